package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account within the cliptube platform.
// Password and RefreshToken never leave the server; public reads go
// through the Public projection.
type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username     string          `bson:"username" json:"username"`
	Email        string          `bson:"email" json:"email"`
	FullName     string          `bson:"fullName" json:"fullName"`
	Password     string          `bson:"password,omitempty" json:"-"`
	Avatar       string          `bson:"avatar" json:"avatar"`
	CoverImage   string          `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	RefreshToken string          `bson:"refreshToken,omitempty" json:"-"`
	WatchHistory []bson.ObjectID `bson:"watchHistory,omitempty" json:"-"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the projection of a user safe to return to clients.
type PublicUser struct {
	ID         bson.ObjectID `bson:"_id" json:"_id"`
	Username   string        `bson:"username" json:"username"`
	Email      string        `bson:"email" json:"email"`
	FullName   string        `bson:"fullName" json:"fullName"`
	Avatar     string        `bson:"avatar" json:"avatar"`
	CoverImage string        `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Public strips the sensitive fields from a full user document.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Subscription is a directed edge from a subscriber to a channel.
// A compound unique index on (channel, subscriber) keeps edges distinct.
type Subscription struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Channel    bson.ObjectID `bson:"channel" json:"channel"`
	Subscriber bson.ObjectID `bson:"subscriber" json:"subscriber"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}

// Video holds metadata for an uploaded video. The file itself lives in
// the media object store.
type Video struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    int64         `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	Likes       int64         `bson:"likes" json:"likes"`
	Dislikes    int64         `bson:"dislikes" json:"dislikes"`
	IsPublished bool          `bson:"isPublished" json:"isPublished"`
	Owner       bson.ObjectID `bson:"owner" json:"owner"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// ChannelProfile is the aggregated public view of a user as a channel.
type ChannelProfile struct {
	ID                bson.ObjectID `bson:"_id" json:"_id"`
	Username          string        `bson:"username" json:"username"`
	Email             string        `bson:"email" json:"email"`
	FullName          string        `bson:"fullName" json:"fullName"`
	Avatar            string        `bson:"avatar" json:"avatar"`
	CoverImage        string        `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscriberCount   int64         `bson:"subscriberCount" json:"subscriberCount"`
	SubscribedToCount int64         `bson:"subscribedToCount" json:"subscribedToCount"`
	IsSubscribed      bool          `bson:"isSubscribed" json:"isSubscribed"`
}

// VideoOwner is the denormalized owner slice attached to watch history entries.
type VideoOwner struct {
	ID       bson.ObjectID `bson:"_id" json:"_id"`
	Username string        `bson:"username" json:"username"`
	FullName string        `bson:"fullName" json:"fullName"`
	Avatar   string        `bson:"avatar" json:"avatar"`
}

// WatchHistoryEntry is a watched video joined with its owner's public fields.
type WatchHistoryEntry struct {
	ID          bson.ObjectID `bson:"_id" json:"_id"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    int64         `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	Owner       VideoOwner    `bson:"owner" json:"owner"`
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

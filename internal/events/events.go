// Package events publishes change notifications for settings, content
// records and posts.
package events

import (
	"context"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// Event topic constants
const (
	TopicSettingSet     = "sitekeep.setting.set"
	TopicSettingDeleted = "sitekeep.setting.deleted"

	TopicContentUpserted = "sitekeep.content.upserted"
	TopicContentDeleted  = "sitekeep.content.deleted"

	TopicPostUpserted = "sitekeep.post.upserted"
	TopicPostDeleted  = "sitekeep.post.deleted"
)

// TopicAll matches every sitekeep topic.
const TopicAll = "sitekeep.>"

// Event types

type SettingSet struct {
	Setting *model.Setting `json:"setting"`
}

type SettingDeleted struct {
	Domain string `json:"domain"`
	Key    string `json:"key"`
}

type ContentUpserted struct {
	Content *model.ContentRecord `json:"content"`
}

type ContentDeleted struct {
	PageKey string `json:"page_key"`
}

type PostUpserted struct {
	Post *model.Post `json:"post"`
}

type PostDeleted struct {
	Domain model.PostDomain `json:"domain"`
	Slug   string           `json:"slug"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

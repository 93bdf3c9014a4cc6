package dto

import "knowledgebase-be/internal/entity"

// PublishEmbedItemMessage is the payload CRUD handlers publish to the embed
// topic. The consumer regenerates (or removes) the item's vector without the
// request path waiting on it.
type PublishEmbedItemMessage struct {
	ItemId   entity.ItemID   `json:"item_id"`
	ItemType entity.ItemType `json:"item_type"`
	UserId   entity.UserID   `json:"user_id"`
}

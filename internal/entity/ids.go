package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemID identifies a content item (note or transcript). It is constructed
// once at the HTTP boundary so the storage layer never has to coerce
// numeric-looking strings.
type ItemID int64

func ParseItemID(s string) (ItemID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid item id: %q", s)
	}
	return ItemID(v), nil
}

func (id ItemID) Int64() int64 { return int64(id) }

func (id ItemID) Valid() bool { return id > 0 }

// UserID identifies the owning user.
type UserID int64

func ParseUserID(s string) (UserID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid user id: %q", s)
	}
	return UserID(v), nil
}

func (id UserID) Int64() int64 { return int64(id) }

func (id UserID) Valid() bool { return id > 0 }

// ItemType is the closed set of embeddable content types.
type ItemType string

const (
	ItemTypeNote       ItemType = "note"
	ItemTypeTranscript ItemType = "transcript"
)

func ParseItemType(s string) (ItemType, error) {
	switch ItemType(strings.ToLower(strings.TrimSpace(s))) {
	case ItemTypeNote:
		return ItemTypeNote, nil
	case ItemTypeTranscript:
		return ItemTypeTranscript, nil
	default:
		return "", fmt.Errorf("invalid item type: %q", s)
	}
}

func (t ItemType) Valid() bool {
	return t == ItemTypeNote || t == ItemTypeTranscript
}

func (t ItemType) String() string { return string(t) }

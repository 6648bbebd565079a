package store

import "context"

// Store is a flat key-value byte store. Get returns (nil, nil) when the key
// is absent. The engine serializes each top-level collection independently
// under the fixed keys below.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

const (
	KeyRooms          = "rooms"
	KeyEffortRecords  = "effort_records"
	KeyChatMessages   = "chat_messages"
	KeyFriendRequests = "friend_requests"
	KeyFriendGroups   = "friend_groups"
	KeyNotifications  = "notifications"
	KeyCurrentUser    = "current_user"
	KeyFeatureLimits  = "feature_limits"
	KeyCredentials    = "profile_credentials"
)

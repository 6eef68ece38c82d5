package models

// Paginated list payloads returned by the service layer. NextCursor is the
// opaque token for the next page, nil when the list is exhausted.

// UserPage is a window of the user directory.
type UserPage struct {
	Items      []PublicProfile `json:"items"`
	NextCursor *string         `json:"nextCursor"`
	Total      int64           `json:"total"`
}

// FriendPage is a window of a viewer's accepted friends.
type FriendPage struct {
	Items      []FriendView `json:"items"`
	NextCursor *string      `json:"nextCursor"`
	Total      int64        `json:"total"`
}

// RequestPage is a window of a viewer's pending inbox or outbox.
type RequestPage struct {
	Items      []FriendRequestView `json:"items"`
	NextCursor *string             `json:"nextCursor"`
	Total      int64               `json:"total"`
}

// SnippetPage is a window of snippets.
type SnippetPage struct {
	Items      []PublicSnippet `json:"items"`
	NextCursor *string         `json:"nextCursor"`
	Total      int64           `json:"total"`
}

// CollectionPage is a window of collections.
type CollectionPage struct {
	Items      []CollectionView `json:"items"`
	NextCursor *string          `json:"nextCursor"`
	Total      int64            `json:"total"`
}

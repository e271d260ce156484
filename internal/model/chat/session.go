package chat

import "time"

// Session identifies one conversation whose history survives across requests.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

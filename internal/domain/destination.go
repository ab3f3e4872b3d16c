package domain

// Destination is the chat a community receives notifications in.
// Fallback is set for the statically configured CHANNEL_ID target.
type Destination struct {
	CommunityID string
	ChannelID   string
	Fallback    bool
}

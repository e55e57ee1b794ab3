package model

// Channel is a chat room. Every channel is backed by the stream
// "chat/<name>"; instance channels are transient and delete themselves
// when their last subscriber leaves.
type Channel struct {
	Name        string
	Description string
	PublicRead  bool
	PublicWrite bool
	Moderated   bool
	Instance    bool
}

// BanchoChannel is a row of the persistent channel catalog used to seed
// real channels at startup.
type BanchoChannel struct {
	Name        string
	Description string
	PublicRead  bool
	PublicWrite bool
	Temp        bool
}

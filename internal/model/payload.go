package model

// Provenance records whether a payload came from the live upstream API or
// from a source adapter's static fallback data.
type Provenance int

const (
	ProvenanceLive Provenance = iota
	ProvenanceFallback
)

func (p Provenance) String() string {
	if p == ProvenanceFallback {
		return "fallback"
	}
	return "live"
}

type VersePayload struct {
	Text      string
	Reference string
}

// Quote is one priced instrument line in a market payload. Payloads carry
// quotes as an ordered slice so rendered output is deterministic.
type Quote struct {
	Label  string
	Price  float64
	Change float64 // percent change over 24h
}

type MarketPayload struct {
	SentimentValue int
	SentimentName  string
	Indices        []Quote
	Crypto         []Quote
}

type NewsPayload struct {
	Title  string
	Source string
}

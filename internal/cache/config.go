package cache

import "time"

// Config tunes the capacity and retention of each cache tier.
type Config struct {
	L1Capacity int           `yaml:"l1_capacity" json:"l1_capacity"`
	L1TTL      time.Duration `yaml:"l1_ttl" json:"l1_ttl"`
	L2TTL      time.Duration `yaml:"l2_ttl" json:"l2_ttl"`
	L3TTL      time.Duration `yaml:"l3_ttl" json:"l3_ttl"`
}

// DefaultConfig mirrors the reference tiering: a one-thousand-entry L1
// held five minutes, an L2 held one hour, and an L3 held one day.
func DefaultConfig() Config {
	return Config{
		L1Capacity: 1000,
		L1TTL:      5 * time.Minute,
		L2TTL:      time.Hour,
		L3TTL:      24 * time.Hour,
	}
}

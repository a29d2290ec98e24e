// Package engagement computes the trending score and keeps the materialized
// post_engagement ranking fresh.
package engagement

import (
	"math"
	"time"
)

const (
	viewWeight    = 3
	likeWeight    = 1
	commentWeight = 2
	recencyWeight = 4
)

// Score is 3V + L + 2C + 4/D, where D is the number of whole days since
// publish. The recency term is 0 on the publish day and for scheduled posts.
func Score(views, likes, comments int64, postedAt, now time.Time) float64 {
	score := float64(views*viewWeight + likes*likeWeight + comments*commentWeight)
	if days := DaysSince(postedAt, now); days > 0 {
		score += recencyWeight / float64(days)
	}
	return score
}

// DaysSince returns whole elapsed days, truncating toward zero.
func DaysSince(t, now time.Time) int64 {
	d := now.Sub(t)
	return int64(math.Trunc(d.Hours() / 24))
}

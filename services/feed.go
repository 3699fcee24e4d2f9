package services

import (
	"math"

	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	noPostsLabel    = "No posts found"

	// maxSkip is past the end of any collection this service pages over.
	maxSkip = math.MaxInt32
)

type feedBucket int

const (
	unseenFollowed feedBucket = iota
	unseenOthers
	seenFollowed
	seenOthers
	bucketCount
)

var bucketLabels = [bucketCount]string{
	unseenFollowed: "Unseen posts from people you follow",
	unseenOthers:   "Unseen posts from others",
	seenFollowed:   "Posts you've already seen from people you follow",
	seenOthers:     "Posts you've already seen from others",
}

// Page normalizes 1-based page/limit query values into a skip/limit pair.
func Page(page, limit int) (skip, size int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if page-1 > maxSkip/limit {
		return maxSkip, limit
	}
	return (page - 1) * limit, limit
}

// ComposeLatest orders posts, already sorted newest first, into four buckets
// (unseen from followed authors, unseen from others, seen from followed,
// seen from others), keeping the input order within each bucket, and
// returns the requested window. The label names the bucket that contributes
// the most posts to the window; ties go to the earlier bucket.
func ComposeLatest(posts []models.Post, viewer *primitive.ObjectID, followed map[primitive.ObjectID]bool, skip, limit int) ([]models.Post, string) {
	var buckets [bucketCount][]models.Post
	for _, p := range posts {
		seen := viewer != nil && p.SeenByUser(*viewer)
		b := unseenOthers
		switch {
		case !seen && followed[p.CreatedBy]:
			b = unseenFollowed
		case seen && followed[p.CreatedBy]:
			b = seenFollowed
		case seen:
			b = seenOthers
		}
		buckets[b] = append(buckets[b], p)
	}

	page := make([]models.Post, 0, limit)
	var counts [bucketCount]int
	pos := 0
	for b := feedBucket(0); b < bucketCount; b++ {
		for _, p := range buckets[b] {
			if pos >= skip && len(page) < limit {
				page = append(page, p)
				counts[b]++
			}
			pos++
		}
	}

	if len(page) == 0 {
		return page, noPostsLabel
	}
	best := unseenFollowed
	for b := feedBucket(1); b < bucketCount; b++ {
		if counts[b] > counts[best] {
			best = b
		}
	}
	return page, bucketLabels[best]
}

package opentdb

import (
	"sort"
	"strings"
)

// categories maps topic keywords to OpenTDB category IDs.
var categories = map[string]int{
	"general":     9,
	"books":       10,
	"film":        11,
	"music":       12,
	"theatre":     13,
	"television":  14,
	"videogames":  15,
	"boardgames":  16,
	"science":     17,
	"computers":   18,
	"math":        19,
	"mythology":   20,
	"sports":      21,
	"geography":   22,
	"history":     23,
	"politics":    24,
	"art":         25,
	"celebrities": 26,
	"animals":     27,
	"vehicles":    28,
	"comics":      29,
	"gadgets":     30,
	"anime":       31,
	"cartoons":    32,
}

// Topic is one entry of the topic vocabulary.
type Topic struct {
	Name       string `json:"name"`
	CategoryID int    `json:"categoryId"`
}

// LookupCategory resolves a topic (case-insensitive, trimmed) to its category ID.
func LookupCategory(topic string) (int, bool) {
	id, ok := categories[strings.ToLower(strings.TrimSpace(topic))]
	return id, ok
}

// Topics returns the vocabulary ordered by category ID.
func Topics() []Topic {
	topics := make([]Topic, 0, len(categories))
	for name, id := range categories {
		topics = append(topics, Topic{Name: name, CategoryID: id})
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].CategoryID < topics[j].CategoryID
	})
	return topics
}

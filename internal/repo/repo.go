package repo

import (
	"gorm.io/gorm"
)

// GormRepo is the relational store behind users, tokens and recipes.
// Every recipe/tag/ingredient method takes the owner id as an explicit argument
// and never reads or writes a row of another owner.
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

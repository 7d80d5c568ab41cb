package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Pangram stores one accepted three-line submission
type Pangram struct {
	ID        string    `gorm:"primary_key" bson:"_id"`
	Line1     string    `gorm:"not null" bson:"line1"` // 五音
	Line2     string    `gorm:"not null" bson:"line2"` // 七音
	Line3     string    `gorm:"not null" bson:"line3"` // 五音
	CreatedAt time.Time `gorm:"index" bson:"created_at"`
	// Seq orders documents that share a created_at millisecond in MongoDB;
	// sqlite uses its rowid instead.
	Seq int64 `gorm:"-" bson:"seq"`
}

// Lines returns the three lines in order
func (p Pangram) Lines() [3]string {
	return [3]string{p.Line1, p.Line2, p.Line3}
}

// Text joins the lines with a single space
func (p Pangram) Text() string {
	return strings.Join([]string{p.Line1, p.Line2, p.Line3}, " ")
}

// TotalLength is the number of characters across all three lines
func (p Pangram) TotalLength() int {
	return utf8.RuneCountInString(p.Line1) +
		utf8.RuneCountInString(p.Line2) +
		utf8.RuneCountInString(p.Line3)
}

package model

import (
	"time"
)

// Problem is a practice problem posted by a judge. The creator is not recorded.
type Problem struct {
	ID          int64     `db:"id"`
	Code        string    `db:"code"` // slug of Name, unique
	Name        string    `db:"name"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	TestInput   string    `db:"test_input"`
	TestOutput  string    `db:"test_output"`
	Score       int       `db:"score"`
	CreatedAt   time.Time `db:"created_at"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Comment is a visitor comment on a post. PostID is an informal reference;
// the schema does not enforce it.
type Comment struct {
	ID      string    `json:"id"`
	PostID  string    `json:"postId"`
	Email   string    `json:"email"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// Submission is a post proposal sent by a reader through the contact flow.
type Submission struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Email       string    `json:"email"`
	Category    string    `json:"category"`
	Content     string    `json:"content"`
	SubmittedAt time.Time `json:"submittedAt"`
}

package model

import "time"

// Article data model. CommentCount is not a column: it is aggregated from
// comments on every read and travels as a JSON string.
type Article struct {
	ArticleID    int       `json:"article_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Votes        int       `json:"votes"`
	Topic        string    `json:"topic"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
	CommentCount int64     `json:"comment_count,string"`
}

// ArticlePage is one window of a filtered article listing together with the
// number of articles matching the same filter.
type ArticlePage struct {
	Articles   []Article
	TotalCount int64
}

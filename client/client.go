// Package client is a typed HTTP client for the NC News API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SergeyParamoshkin/ncnews/internal/model"
)

type Client struct {
	http.Client
	Addr string
}

// APIError is a non-2xx answer decoded from the {"status","msg"} body.
type APIError struct {
	StatusCode int
	Status     string `json:"status"`
	Msg        string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ncnews: %d %s: %s", e.StatusCode, e.Status, e.Msg)
}

// ArticleQuery mirrors the GET /api/articles query string. Zero values are
// left out.
type ArticleQuery struct {
	SortBy string
	Order  string
	Topic  string
	Author string
	Limit  int
	Page   int
}

func (q ArticleQuery) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("sort_by", q.SortBy)
	set("order", q.Order)
	set("topic", q.Topic)
	set("author", q.Author)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}

	return v
}

type articleList struct {
	Articles   []model.Article `json:"articles"`
	TotalCount int64           `json:"total_count,string"`
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) ListArticles(ctx context.Context, q ArticleQuery) (model.ArticlePage, error) {
	var out articleList
	if err := c.do(ctx, http.MethodGet, "/api/articles?"+q.values().Encode(), nil, &out); err != nil {
		return model.ArticlePage{}, err
	}

	return model.ArticlePage{Articles: out.Articles, TotalCount: out.TotalCount}, nil
}

func (c *Client) GetArticle(ctx context.Context, id int) (model.Article, error) {
	var out struct {
		Article model.Article `json:"article"`
	}
	err := c.do(ctx, http.MethodGet, "/api/articles/"+strconv.Itoa(id), nil, &out)

	return out.Article, err
}

func (c *Client) CreateArticle(ctx context.Context, author, title, body, topic string) (model.Article, error) {
	in := map[string]string{"author": author, "title": title, "body": body, "topic": topic}

	var out struct {
		Article model.Article `json:"article"`
	}
	err := c.do(ctx, http.MethodPost, "/api/articles", in, &out)

	return out.Article, err
}

func (c *Client) VoteArticle(ctx context.Context, id, inc int) (model.Article, error) {
	var out struct {
		Article model.Article `json:"article"`
	}
	err := c.do(ctx, http.MethodPatch, "/api/articles/"+strconv.Itoa(id), map[string]int{"inc_votes": inc}, &out)

	return out.Article, err
}

func (c *Client) ListComments(ctx context.Context, articleID, limit, page int) ([]model.Comment, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}

	var out struct {
		Comments []model.Comment `json:"comments"`
	}
	err := c.do(ctx, http.MethodGet, "/api/articles/"+strconv.Itoa(articleID)+"/comments?"+v.Encode(), nil, &out)

	return out.Comments, err
}

func (c *Client) PostComment(ctx context.Context, articleID int, username, body string) (model.Comment, error) {
	var out struct {
		Comment model.Comment `json:"comment"`
	}
	err := c.do(ctx, http.MethodPost, "/api/articles/"+strconv.Itoa(articleID)+"/comments",
		map[string]string{"username": username, "body": body}, &out)

	return out.Comment, err
}

func (c *Client) VoteComment(ctx context.Context, id, inc int) (model.Comment, error) {
	var out struct {
		Comment model.Comment `json:"comment"`
	}
	err := c.do(ctx, http.MethodPatch, "/api/comments/"+strconv.Itoa(id), map[string]int{"inc_votes": inc}, &out)

	return out.Comment, err
}

func (c *Client) DeleteComment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) ListTopics(ctx context.Context) ([]model.Topic, error) {
	var out struct {
		Topics []model.Topic `json:"topics"`
	}
	err := c.do(ctx, http.MethodGet, "/api/topics", nil, &out)

	return out.Topics, err
}

func (c *Client) CreateTopic(ctx context.Context, slug, description string) (model.Topic, error) {
	var out struct {
		Topic model.Topic `json:"topic"`
	}
	err := c.do(ctx, http.MethodPost, "/api/topics", model.Topic{Slug: slug, Description: description}, &out)

	return out.Topic, err
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out struct {
		Users []model.User `json:"users"`
	}
	err := c.do(ctx, http.MethodGet, "/api/users", nil, &out)

	return out.Users, err
}

func (c *Client) GetUser(ctx context.Context, username string) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(username), nil, &out)

	return out.User, err
}

// do sends in as JSON when non-nil and decodes a 2xx body into out when
// non-nil. Other statuses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Addr+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Status = http.StatusText(resp.StatusCode)
		}

		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return nil
}

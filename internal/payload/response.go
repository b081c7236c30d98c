package payload

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/ncnews/internal/errresponse"
	"github.com/SergeyParamoshkin/ncnews/internal/logger"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
)

// ArticleListResponse wraps one page of articles. TotalCount counts every
// article matching the filter, not just this page.
type ArticleListResponse struct {
	Articles   []model.Article `json:"articles"`
	TotalCount int64           `json:"total_count,string"`
}

func NewArticleListResponse(page model.ArticlePage) *ArticleListResponse {
	return &ArticleListResponse{Articles: page.Articles, TotalCount: page.TotalCount}
}

func (rd *ArticleListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Articles == nil {
		rd.Articles = []model.Article{}
	}

	return nil
}

type ArticleResponse struct {
	Article model.Article `json:"article"`
}

func NewArticleResponse(article model.Article) *ArticleResponse {
	return &ArticleResponse{Article: article}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type CommentListResponse struct {
	Comments []model.Comment `json:"comments"`
}

func NewCommentListResponse(comments []model.Comment) *CommentListResponse {
	return &CommentListResponse{Comments: comments}
}

func (rd *CommentListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Comments == nil {
		rd.Comments = []model.Comment{}
	}

	return nil
}

type CommentResponse struct {
	Comment model.Comment `json:"comment"`
}

func NewCommentResponse(comment model.Comment) *CommentResponse {
	return &CommentResponse{Comment: comment}
}

func (rd *CommentResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type TopicListResponse struct {
	Topics []model.Topic `json:"topics"`
}

func NewTopicListResponse(topics []model.Topic) *TopicListResponse {
	return &TopicListResponse{Topics: topics}
}

func (rd *TopicListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Topics == nil {
		rd.Topics = []model.Topic{}
	}

	return nil
}

type TopicResponse struct {
	Topic model.Topic `json:"topic"`
}

func NewTopicResponse(topic model.Topic) *TopicResponse {
	return &TopicResponse{Topic: topic}
}

func (rd *TopicResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type UserListResponse struct {
	Users []model.User `json:"users"`
}

func NewUserListResponse(users []model.User) *UserListResponse {
	return &UserListResponse{Users: users}
}

func (rd *UserListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Users == nil {
		rd.Users = []model.User{}
	}

	return nil
}

type UserResponse struct {
	User model.User `json:"user"`
}

func NewUserResponse(user model.User) *UserResponse {
	return &UserResponse{User: user}
}

func (rd *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Respond renders v with status, falling back to a 422 body when v cannot be
// encoded.
func Respond(w http.ResponseWriter, r *http.Request, status int, v render.Renderer) {
	render.Status(r, status)

	if err := render.Render(w, r, v); err != nil {
		if rerr := render.Render(w, r, errresponse.ErrRender(err)); rerr != nil {
			logger.FromContext(r.Context()).Errorw("render response", "error", rerr)
		}
	}
}

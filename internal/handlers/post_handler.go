package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"mysocial-server/internal/managers"
	"mysocial-server/internal/schemas"
	"mysocial-server/internal/utils"
)

const maxPostContentLength = 256

type PostHdl interface {
	CreatePost(c *gin.Context)
	GetFeed(c *gin.Context)
	LikePost(c *gin.Context)
	UpdatePost(c *gin.Context)
	DeletePost(c *gin.Context)
}

type PostHandler struct {
	DatabaseManager managers.DatabaseMgr
	MediaManager    managers.MediaMgr
}

func NewPostHandler(databaseManager *managers.DatabaseMgr, mediaManager *managers.MediaMgr) PostHdl {
	return &PostHandler{
		DatabaseManager: *databaseManager,
		MediaManager:    *mediaManager,
	}
}

// CreatePost creates a new post from a multipart form. The post needs text, an image, or
// both. An attached image is staged in a temporary file, uploaded to the media store and
// the temporary file is removed again whether or not the upload succeeded.
func (handler *PostHandler) CreatePost(c *gin.Context) {
	authorId := c.MustGet(utils.UserIdKey.String()).(uuid.UUID)

	content := strings.TrimSpace(utils.GetValidator().SanitizeString(c.PostForm(utils.ContentFormKey)))
	fileHeader, fileErr := c.FormFile(utils.ImageFormKey)

	if content == "" && fileErr != nil {
		err := errors.New("post needs text or an image")
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}
	// Rune count, matching the max=256 validation on post edits
	if utf8.RuneCountInString(content) > maxPostContentLength {
		err := errors.New("post content too long")
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	var imageUrl string
	if fileErr == nil {
		extension := filepath.Ext(fileHeader.Filename)
		tempPath := filepath.Join(os.TempDir(), uuid.New().String()+extension)

		if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
			utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
			return
		}
		defer func() {
			if err := os.Remove(tempPath); err != nil {
				utils.LogMessageWithFieldsAndError(c, "warn", "Error removing temporary upload file", err)
			}
		}()

		storageKey := managers.RandomStorageKey() + extension
		uploadedUrl, err := handler.MediaManager.Upload(c, tempPath, storageKey)
		if err != nil {
			utils.WriteAndLogError(c, schemas.MediaUploadFailed, http.StatusInternalServerError, err)
			return
		}
		imageUrl = uploadedUrl
	}

	// Begin a new transaction
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	author := schemas.AuthorDTO{}

	queryString := "SELECT username, nickname FROM social_schema.users WHERE user_id = $1"
	if err = tx.QueryRow(c, queryString, authorId).Scan(&author.Username, &author.Nickname); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	postId := uuid.New()
	createdAt := time.Now()

	queryString = `INSERT INTO social_schema.posts (post_id, author_id, content, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.Exec(c, queryString, postId, authorId, content, imageUrl, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	postDto := &schemas.PostDTO{
		PostId:       postId.String(),
		Author:       author,
		Content:      content,
		ImageURL:     imageUrl,
		CreationDate: createdAt.Format(time.RFC3339),
		Likes:        0,
		Liked:        false,
	}

	utils.WriteAndLogResponse(c, postDto, http.StatusCreated)
}

// GetFeed returns all posts of all users, newest first, with like counts and whether the
// calling user liked each post.
func (handler *PostHandler) GetFeed(c *gin.Context) {
	callerId := c.MustGet(utils.UserIdKey.String()).(uuid.UUID)
	offset, limit := utils.ParsePaginationParams(c)

	queryString := `SELECT p.post_id, u.username, u.nickname, p.content, p.image_url, p.created_at,
		(SELECT COUNT(*) FROM social_schema.post_likes l WHERE l.post_id = p.post_id),
		(SELECT EXISTS (SELECT 1 FROM social_schema.post_likes l WHERE l.post_id = p.post_id AND l.user_id = $1))
		FROM social_schema.posts p
		JOIN social_schema.users u ON u.user_id = p.author_id
		ORDER BY p.created_at DESC`
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, callerId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	posts, err := scanPostRows(rows)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(c, posts, offset, limit, len(posts))
}

// LikePost toggles the calling user's like on the post: a first call likes it, a second
// call removes the like again.
func (handler *PostHandler) LikePost(c *gin.Context) {
	callerId := c.MustGet(utils.UserIdKey.String()).(uuid.UUID)

	postId, parseErr := uuid.Parse(c.Param(utils.PostIdKey))
	if parseErr != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, parseErr)
		return
	}

	// Begin a new transaction
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	if err = checkPostExists(c, tx, postId); err != nil {
		return
	}

	var liked bool

	queryString := "SELECT EXISTS (SELECT 1 FROM social_schema.post_likes WHERE post_id = $1 AND user_id = $2)"
	if err = tx.QueryRow(c, queryString, postId, callerId).Scan(&liked); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if liked {
		queryString = "DELETE FROM social_schema.post_likes WHERE post_id = $1 AND user_id = $2"
	} else {
		queryString = "INSERT INTO social_schema.post_likes (post_id, user_id) VALUES ($1, $2)"
	}
	if _, err = tx.Exec(c, queryString, postId, callerId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdatePost replaces the text of the post. Only the author may edit it, and the edit must
// not leave the post with neither text nor image.
func (handler *PostHandler) UpdatePost(c *gin.Context) {
	callerId := c.MustGet(utils.UserIdKey.String()).(uuid.UUID)
	updateRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UpdatePostRequest)

	postId, parseErr := uuid.Parse(c.Param(utils.PostIdKey))
	if parseErr != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, parseErr)
		return
	}

	// Begin a new transaction
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	var authorId uuid.UUID
	var imageUrl string

	queryString := "SELECT author_id, image_url FROM social_schema.posts WHERE post_id = $1"
	if err = tx.QueryRow(c, queryString, postId).Scan(&authorId, &imageUrl); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.PostNotFound, http.StatusNotFound, errors.New("post not found"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if authorId != callerId {
		err = errNotOwner
		utils.WriteAndLogError(c, schemas.Forbidden, http.StatusForbidden, err)
		return
	}

	content := strings.TrimSpace(updateRequest.Content)
	if content == "" && imageUrl == "" {
		err = errors.New("post needs text or an image")
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	queryString = "UPDATE social_schema.posts SET content = $1 WHERE post_id = $2"
	if _, err = tx.Exec(c, queryString, content, postId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// DeletePost deletes the post. Only the author may delete it; the likes of the post are
// removed by the cascading foreign key.
func (handler *PostHandler) DeletePost(c *gin.Context) {
	callerId := c.MustGet(utils.UserIdKey.String()).(uuid.UUID)

	postId, parseErr := uuid.Parse(c.Param(utils.PostIdKey))
	if parseErr != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, parseErr)
		return
	}

	// Begin a new transaction
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	var authorId uuid.UUID

	queryString := "SELECT author_id FROM social_schema.posts WHERE post_id = $1"
	if err = tx.QueryRow(c, queryString, postId).Scan(&authorId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.PostNotFound, http.StatusNotFound, errors.New("post not found"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if authorId != callerId {
		err = errNotOwner
		utils.WriteAndLogError(c, schemas.Forbidden, http.StatusForbidden, err)
		return
	}

	queryString = "DELETE FROM social_schema.posts WHERE post_id = $1"
	if _, err = tx.Exec(c, queryString, postId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// checkPostExists checks that the post exists and writes the error response if it does not.
func checkPostExists(c *gin.Context, tx pgx.Tx, postId uuid.UUID) error {
	var exists bool

	queryString := "SELECT EXISTS (SELECT 1 FROM social_schema.posts WHERE post_id = $1)"
	if err := tx.QueryRow(c, queryString, postId).Scan(&exists); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	if !exists {
		err := errors.New("post not found")
		utils.WriteAndLogError(c, schemas.PostNotFound, http.StatusNotFound, err)
		return err
	}

	return nil
}

// scanPostRows collects feed rows into post DTOs.
func scanPostRows(rows pgx.Rows) ([]schemas.PostDTO, error) {
	posts := make([]schemas.PostDTO, 0)

	for rows.Next() {
		post := schemas.PostDTO{}
		var createdAt pgtype.Timestamptz

		if err := rows.Scan(&post.PostId, &post.Author.Username, &post.Author.Nickname,
			&post.Content, &post.ImageURL, &createdAt, &post.Likes, &post.Liked); err != nil {
			return nil, err
		}

		post.CreationDate = createdAt.Time.Format(time.RFC3339)
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

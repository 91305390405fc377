package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"mysocial-server/internal/managers"
	"mysocial-server/internal/schemas"
	"mysocial-server/internal/tokens"
	"mysocial-server/internal/utils"
)

type UserHdl interface {
	RegisterUser(c *gin.Context)
	VerifyEmail(c *gin.Context)
	ResendVerification(c *gin.Context)
	LoginUser(c *gin.Context)
	LogoutUser(c *gin.Context)
	ForgotPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
	GetUserProfile(c *gin.Context)
	SearchUsers(c *gin.Context)
	DeleteAccount(c *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	JWTManager      managers.JWTMgr
	MailManager     managers.MailMgr
	TokenIssuer     *tokens.Issuer
	Validator       *utils.Validator
}

func NewUserHandler(databaseManager *managers.DatabaseMgr, jwtManager *managers.JWTMgr, mailManager *managers.MailMgr, tokenIssuer *tokens.Issuer) UserHdl {
	return &UserHandler{
		DatabaseManager: *databaseManager,
		JWTManager:      *jwtManager,
		MailManager:     *mailManager,
		TokenIssuer:     tokenIssuer,
		Validator:       utils.GetValidator(),
	}
}

var errInvalidToken = errors.New("invalid token")
var errNotOwner = errors.New("not the owner of the resource")

// RegisterUser creates a new unverified user and sends a verification token to the user's email.
// If the mail cannot be dispatched, the freshly created user is deleted again so that failed
// registrations never linger as pending accounts.
func (handler *UserHandler) RegisterUser(c *gin.Context) {
	registrationRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.RegistrationRequest)

	username := strings.ToLower(strings.TrimSpace(registrationRequest.Username))
	email := strings.ToLower(strings.TrimSpace(registrationRequest.Email))

	if !handler.Validator.VerifyEmail(email) {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("email failed verification"))
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

	// Check if the username or email is taken
	if err = checkUsernameEmailTaken(c, tx, username, email); err != nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	// Issue the verification token; only its digest is persisted
	token, err := handler.TokenIssuer.Issue()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	// Insert the user into the database
	userId := uuid.New()
	createdAt := time.Now()

	queryString := `INSERT INTO social_schema.users
		(user_id, username, nickname, email, age, password, email_verified, verification_token_hash, verification_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err = tx.Exec(c, queryString, userId, username, registrationRequest.Nickname, email,
		registrationRequest.Age, hashedPassword, false, token.Digest, token.ExpiresAt, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	// Commit the transaction
	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	// Send the verification mail. If dispatch fails, compensate by deleting the
	// user we just created before reporting the failure.
	if mailErr := handler.MailManager.SendVerificationMail(email, username, token.Raw); mailErr != nil {
		queryString = "DELETE FROM social_schema.users WHERE user_id = $1"
		if _, deleteErr := handler.DatabaseManager.GetPool().Exec(c, queryString, userId); deleteErr != nil {
			utils.LogMessageWithFieldsAndError(c, "error", "Error deleting user after failed mail dispatch", deleteErr)
		}

		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, mailErr)
		return
	}

	userDto := &schemas.UserDTO{
		Username: username,
		Nickname: registrationRequest.Nickname,
		Email:    email,
	}

	// Send success response
	utils.WriteAndLogResponse(c, userDto, http.StatusCreated)
}

// VerifyEmail redeems the raw verification token from the path. The stored digest must match
// exactly; a match past its expiry deletes the pending account.
func (handler *UserHandler) VerifyEmail(c *gin.Context) {
	rawToken := c.Param(utils.TokenKey)
	digest := tokens.DigestOf(rawToken)

	// Begin a new transaction
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	// Look up the account by exact digest equality
	var userId uuid.UUID
	var expiresAt pgtype.Timestamptz

	queryString := "SELECT user_id, verification_expires_at FROM social_schema.users WHERE verification_token_hash = $1"
	if err = tx.QueryRow(c, queryString, digest).Scan(&userId, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidToken, http.StatusNotFound, errInvalidToken)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	// Expired tokens retire the pending account so the registration can be retried
	if time.Now().After(expiresAt.Time) {
		queryString = "DELETE FROM social_schema.users WHERE user_id = $1"
		if _, err = tx.Exec(c, queryString, userId); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}

		if err = utils.CommitTransaction(c, tx); err != nil {
			return
		}

		utils.WriteAndLogError(c, schemas.TokenExpired, http.StatusGone, errors.New("token expired"))
		return
	}

	// Promote the account and clear the token so it cannot be redeemed twice
	queryString = `UPDATE social_schema.users
		SET email_verified = TRUE, verification_token_hash = NULL, verification_expires_at = NULL
		WHERE user_id = $1`
	if _, err = tx.Exec(c, queryString, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// ResendVerification reissues the verification token for a still-unverified account.
func (handler *UserHandler) ResendVerification(c *gin.Context) {
	resendRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ResendVerificationRequest)
	email := strings.ToLower(strings.TrimSpace(resendRequest.Email))

	// Begin a new transaction
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	var userId uuid.UUID
	var username string
	var emailVerified bool

	queryString := "SELECT user_id, username, email_verified FROM social_schema.users WHERE email = $1"
	if err = tx.QueryRow(c, queryString, email).Scan(&userId, &username, &emailVerified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if emailVerified {
		err = errors.New("already verified")
		utils.WriteAndLogError(c, schemas.UserAlreadyVerified, http.StatusAlreadyReported, err)
		return
	}

	token, err := handler.TokenIssuer.Issue()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString = "UPDATE social_schema.users SET verification_token_hash = $1, verification_expires_at = $2 WHERE user_id = $3"
	if _, err = tx.Exec(c, queryString, token.Digest, token.ExpiresAt, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	if mailErr := handler.MailManager.SendVerificationMail(email, username, token.Raw); mailErr != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, mailErr)
		return
	}

	c.Status(http.StatusNoContent)
}

// LoginUser checks the credentials and starts a session by setting the session cookie.
func (handler *UserHandler) LoginUser(c *gin.Context) {
	loginRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)
	email := strings.ToLower(strings.TrimSpace(loginRequest.Email))

	var userId uuid.UUID
	var username, nickname, hashedPassword string
	var emailVerified bool

	queryString := "SELECT user_id, username, nickname, password, email_verified FROM social_schema.users WHERE email = $1"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, email)
	if err := row.Scan(&userId, &username, &nickname, &hashedPassword, &emailVerified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if !emailVerified {
		utils.WriteAndLogError(c, schemas.UserNotVerified, http.StatusForbidden, errors.New("user not verified"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusForbidden, err)
		return
	}

	token, err := handler.JWTManager.GenerateJWT(userId.String())
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	maxAge := int(handler.JWTManager.SessionTTL().Seconds())
	c.SetCookie(managers.SessionCookieName, token, maxAge, "/", "", false, true)

	userDto := &schemas.UserDTO{
		Username: username,
		Nickname: nickname,
		Email:    email,
	}

	utils.WriteAndLogResponse(c, userDto, http.StatusOK)
}

// LogoutUser ends the session by clearing the session cookie.
func (handler *UserHandler) LogoutUser(c *gin.Context) {
	c.SetCookie(managers.SessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// ForgotPassword stores a fresh reset token digest on the account and mails the raw token.
// An unknown email is reported as such.
func (handler *UserHandler) ForgotPassword(c *gin.Context) {
	forgotRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ForgotPasswordRequest)
	email := strings.ToLower(strings.TrimSpace(forgotRequest.Email))

	var userId uuid.UUID
	var username string

	queryString := "SELECT user_id, username FROM social_schema.users WHERE email = $1"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, email)
	if err := row.Scan(&userId, &username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.EmailNotFound, http.StatusNotFound, errors.New("email not found"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	token, err := handler.TokenIssuer.Issue()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString = "UPDATE social_schema.users SET reset_token_hash = $1, reset_expires_at = $2 WHERE user_id = $3"
	if _, err := handler.DatabaseManager.GetPool().Exec(c, queryString, token.Digest, token.ExpiresAt, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if mailErr := handler.MailManager.SendResetMail(email, username, token.Raw); mailErr != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, mailErr)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResetPassword redeems a reset token and replaces the password. The lookup combines digest
// equality and expiry in one predicate, so an expired token is indistinguishable from a
// wrong one. Clearing the digest makes a second redemption fail the same way.
func (handler *UserHandler) ResetPassword(c *gin.Context) {
	resetRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ResetPasswordRequest)
	rawToken := c.Param(utils.TokenKey)
	digest := tokens.DigestOf(rawToken)

	var userId uuid.UUID

	queryString := "SELECT user_id FROM social_schema.users WHERE reset_token_hash = $1 AND reset_expires_at > $2"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, digest, time.Now())
	if err := row.Scan(&userId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidToken, http.StatusNotFound, errInvalidToken)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(resetRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString = "UPDATE social_schema.users SET password = $1, reset_token_hash = NULL, reset_expires_at = NULL WHERE user_id = $2"
	if _, err := handler.DatabaseManager.GetPool().Exec(c, queryString, hashedPassword, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUserProfile returns the profile of the user specified in the path, including their
// posts with like counts, newest first.
func (handler *UserHandler) GetUserProfile(c *gin.Context) {
	username := c.Param(utils.UsernameKey)
	callerId := c.MustGet(utils.UserIdKey.String()).(uuid.UUID)

	profile := schemas.UserProfileDTO{}
	var userId uuid.UUID

	queryString := "SELECT user_id, username, nickname, age FROM social_schema.users WHERE username = $1"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, username)
	if err := row.Scan(&userId, &profile.Username, &profile.Nickname, &profile.Age); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = `SELECT p.post_id, p.content, p.image_url, p.created_at,
		(SELECT COUNT(*) FROM social_schema.post_likes l WHERE l.post_id = p.post_id),
		(SELECT EXISTS (SELECT 1 FROM social_schema.post_likes l WHERE l.post_id = p.post_id AND l.user_id = $2))
		FROM social_schema.posts p WHERE p.author_id = $1 ORDER BY p.created_at DESC`
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, userId, callerId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	author := schemas.AuthorDTO{Username: profile.Username, Nickname: profile.Nickname}
	profile.Posts = make([]schemas.PostDTO, 0)
	for rows.Next() {
		post := schemas.PostDTO{Author: author}
		var createdAt pgtype.Timestamptz

		if err := rows.Scan(&post.PostId, &post.Content, &post.ImageURL, &createdAt, &post.Likes, &post.Liked); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}

		post.CreationDate = createdAt.Time.Format(time.RFC3339)
		profile.Posts = append(profile.Posts, post)
	}

	utils.WriteAndLogResponse(c, profile, http.StatusOK)
}

// SearchUsers returns users whose username contains the search term, case-insensitively.
func (handler *UserHandler) SearchUsers(c *gin.Context) {
	searchTerm := c.Query(utils.UsernameParamKey)
	offset, limit := utils.ParsePaginationParams(c)

	queryString := `SELECT username, nickname FROM social_schema.users
		WHERE username ILIKE '%' || $1 || '%' ESCAPE '\' ORDER BY username`
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, escapeLikeTerm(searchTerm))
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	users := make([]schemas.AuthorDTO, 0)
	for rows.Next() {
		user := schemas.AuthorDTO{}
		if err := rows.Scan(&user.Username, &user.Nickname); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		users = append(users, user)
	}

	utils.SendPaginatedResponse(c, users, offset, limit, len(users))
}

// DeleteAccount deletes the account specified in the path. Only the owner may delete it;
// the posts and likes of the account are removed by the cascading foreign keys.
func (handler *UserHandler) DeleteAccount(c *gin.Context) {
	username := c.Param(utils.UsernameKey)
	callerId := c.MustGet(utils.UserIdKey.String()).(uuid.UUID)

	// Begin a new transaction
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	var userId uuid.UUID

	queryString := "SELECT user_id FROM social_schema.users WHERE username = $1"
	if err = tx.QueryRow(c, queryString, username).Scan(&userId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if userId != callerId {
		err = errNotOwner
		utils.WriteAndLogError(c, schemas.Forbidden, http.StatusForbidden, err)
		return
	}

	queryString = "DELETE FROM social_schema.users WHERE user_id = $1"
	if _, err = tx.Exec(c, queryString, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.SetCookie(managers.SessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// checkUsernameEmailTaken checks if the username or email is taken.
func checkUsernameEmailTaken(c *gin.Context, tx pgx.Tx, username, email string) error {
	queryString := "SELECT username, email FROM social_schema.users WHERE username = $1 OR email = $2"
	rows, err := tx.Query(c, queryString, username, email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		var foundUsername string
		var foundEmail string

		if err := rows.Scan(&foundUsername, &foundEmail); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}

		customErr := schemas.EmailTaken
		if foundUsername == username {
			customErr = schemas.UsernameTaken
		}

		err = errors.New("username or email taken")
		utils.WriteAndLogError(c, customErr, http.StatusConflict, err)
		return err
	}

	return nil
}

// escapeLikeTerm escapes the LIKE wildcards so the search term is matched literally.
func escapeLikeTerm(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

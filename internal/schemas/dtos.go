package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MetadataDTO is a struct that represents the version response of the root route
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// UserDTO is a struct that represents a user response
// Username is the username of the user
// Nickname is the nickname of the user
// Email is the email of the user
type UserDTO struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// AuthorDTO is a struct that represents an author response
// Username is the username of the author
// Nickname is the nickname of the author
type AuthorDTO struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// PostDTO is a struct that represents a post response
// PostId is the ID of the post
// Author is the author of the post
// Content is the text body of the post, may be empty if an image is set
// ImageURL is the media URL of the post, may be empty if content is set
// CreationDate is the timestamp of when the post was created
// Likes is the number of likes on the post
// Liked reports whether the requesting user has liked the post
type PostDTO struct {
	PostId       string    `json:"postId"`
	Author       AuthorDTO `json:"author"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"imageUrl"`
	CreationDate string    `json:"creationDate"`
	Likes        int       `json:"likes"`
	Liked        bool      `json:"liked"`
}

// UserProfileDTO is a struct that represents a user profile response
// Username is the username of the user
// Nickname is the nickname of the user
// Age is the optional age of the user
// Posts are the posts of the user, newest first
type UserProfileDTO struct {
	Username string    `json:"username"`
	Nickname string    `json:"nickname"`
	Age      *int      `json:"age"`
	Posts    []PostDTO `json:"posts"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the records of the response
// Pagination is the pagination of the response
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is a struct that represents a pagination
// Offset is the given offset of the pagination
// Limit is the given limit of the pagination
// Records is the total records of the pagination
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}

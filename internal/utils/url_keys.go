package utils

const (
	// UsernameKey is the key for username used in routing parameters.
	UsernameKey = "username"

	// TokenKey is the key for raw verification/reset tokens used in routing parameters.
	TokenKey = "token"

	// PostIdKey is the key for post ID used in routing parameters.
	PostIdKey = "postId"

	// UsernameParamKey is the key for username used in query parameters.
	UsernameParamKey = "username"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"

	// ContentFormKey is the key for post text in multipart forms.
	ContentFormKey = "content"

	// ImageFormKey is the key for the attached image in multipart forms.
	ImageFormKey = "image"
)

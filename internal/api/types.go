package api

// ListRecipesQuery holds the paging parameters of GET /recipes
type ListRecipesQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

// MessageResponse is the body of successful deletes
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

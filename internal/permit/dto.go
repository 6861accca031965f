package permit

type CreatePermitResponse struct {
	Message  string `json:"message"`
	PermitID int64  `json:"permitId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

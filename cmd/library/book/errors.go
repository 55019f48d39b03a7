package book

type ErrResponse struct {
	Code    int
	Message string
}

func (e ErrResponse) Error() string {
	return e.Message
}

var ErrResponseBookNotFound = ErrResponse{101, "book not found"}
var ErrResponseInvalidJSON = ErrResponse{102, "invalid json content."}
var ErrResponseMalformedFile = ErrResponse{103, "stored books do not match the expected format - every entry needs title, author, available and isbn."}

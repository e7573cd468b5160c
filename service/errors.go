package service

// NotFoundError reports that the addressed entity does not exist
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// BadRequestError reports request parameters the service cannot act on
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

var (
	ErrAssetNotFound     = &NotFoundError{Message: "Asset not found"}
	ErrAssetPairNotFound = &NotFoundError{Message: "Asset pair not found"}
)

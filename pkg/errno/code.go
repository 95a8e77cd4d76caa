package errno

// code=0 request succeeded
// code=4xx client error
// code=5xx server error
// code=2xxxx business error

type Errno struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// Upload validation
	ErrMissingParam      = &Errno{Code: 20001, Message: "Missing required parameter"}
	ErrUnsupportedFormat = &Errno{Code: 20002, Message: "Unsupported video format"}
	ErrFileTooLarge      = &Errno{Code: 20003, Message: "File size exceeds the allowed maximum"}
	ErrEmptyUpload       = &Errno{Code: 20004, Message: "Uploaded file is empty"}
	ErrTitleRequired     = &Errno{Code: 20005, Message: "Video title is required"}
	ErrAssetUUIDRequired = &Errno{Code: 20006, Message: "Asset UUID is required"}

	// Pipeline stages
	ErrStorageWrite     = &Errno{Code: 20101, Message: "Failed to write media to storage"}
	ErrProbeFailed      = &Errno{Code: 20102, Message: "Media probe failed"}
	ErrThumbnailFailed  = &Errno{Code: 20103, Message: "Thumbnail extraction failed"}
	ErrTranscodeFailed  = &Errno{Code: 20104, Message: "Variant transcoding failed"}
	ErrTranscodeTimeout = &Errno{Code: 20105, Message: "Variant transcoding timed out"}
	ErrManifestWrite    = &Errno{Code: 20106, Message: "Failed to write master manifest"}
	ErrOriginalMissing  = &Errno{Code: 20107, Message: "Original media file is missing; re-upload required"}
	ErrAssetBusy        = &Errno{Code: 20108, Message: "Asset pipeline is already running"}
	ErrArtifactsMissing = &Errno{Code: 20109, Message: "Playable artifacts are missing; re-upload required"}

	// Metadata store
	ErrAssetNotFound = &Errno{Code: 20201, Message: "Video asset not found"}
	ErrAssetExists   = &Errno{Code: 20202, Message: "Video asset already exists"}
	ErrBadTransition = &Errno{Code: 20203, Message: "Illegal asset status transition"}
)

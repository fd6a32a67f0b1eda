package httpx

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	CollectionUnknown             = failed(5002, "Unknown collection")
	UserIdIsEmpty                 = failed(5003, "User id is empty")
	BranchSelectionRequired       = failed(5004, "Branch selection is required")
	RejectReasonRequired          = failed(5005, "Reject reason is required")
	InvalidAction                 = failed(5006, "Invalid action")

	BadRequest = failed(4000, "Bad request")
	NotFound   = failed(4004, "Not found")

	UserNotExist       = failed(4041, "User does not exist")
	MembershipNotExist = failed(4042, "Membership does not exist")
	RecordNotExist     = failed(4043, "Record does not exist")

	InternalError = failed(5000, "Internal error, please contact the administrator")
)

var (
	Success = success(200, "Request Success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

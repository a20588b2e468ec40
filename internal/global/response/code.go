package response

// 错误码前三位即 HTTP 状态码
var (
	// 400 参数校验
	ErrInvalidRequest     = newError(40000, "请求参数错误")
	ErrFieldRequired      = newError(40001, "缺少必填字段")
	ErrAttachmentTooLarge = newError(40002, "附件超过大小限制")
	ErrTeamTooLarge       = newError(40003, "团队成员超过上限")
	ErrInvalidStatus      = newError(40004, "状态流转不合法")

	// 401 认证
	ErrTokenInvalid    = newError(40100, "登录凭证无效")
	ErrUnauthorized    = newError(40101, "未登录")
	ErrInvalidPassword = newError(40102, "用户名或密码错误")

	// 403 权限
	ErrForbidden = newError(40300, "无权限")

	// 404
	ErrNotFound = newError(40400, "资源不存在")

	// 409 业务规则
	ErrAlreadyExists    = newError(40900, "资源已存在")
	ErrConflict         = newError(40901, "数据冲突，请重试")
	ErrSubmissionClosed = newError(40902, "活动当前未开放提交")
	ErrDeadlinePassed   = newError(40903, "已超过提交截止时间")
	ErrNotParticipant   = newError(40904, "用户未报名该活动")
	ErrDuplicateMember  = newError(40905, "团队成员重复")
	ErrUnknownMember    = newError(40906, "团队成员不存在")

	// 500
	ErrDatabase       = newError(50000, "数据库错误")
	ErrServerInternal = newError(50001, "服务器内部错误")
	ErrStorage        = newError(50002, "对象存储错误")
)

package ctxkey

const (
	// RequestId is a per-request unique identifier, also echoed as a response header.
	// Set in: middleware.RequestId.
	// Read in: controller.RunTask and middleware.RelayPanicRecover for log correlation.
	RequestId = "X-Apitest-Request-Id"

	// TaskType is the "type" field of the task being served.
	// Set in: controller.RunTask after the body is decoded.
	// Read in: middleware.RelayPanicRecover when logging a crashed task.
	TaskType = "task_type"
)

package logevidence

import "github.com/clusterscope/evidence-core/internal/models"

// exitCodeTable maps the well-known container exit codes. Codes outside the
// table classify as unknown; ClassifyExitCode never fails.
var exitCodeTable = map[int]models.ExitCodeInfo{
	0: {
		Code:        0,
		Description: "Success - normal exit",
		Category:    models.ExitSuccess,
	},
	1: {
		Code:           1,
		Description:    "General error - application-specific failure",
		Category:       models.ExitApplicationError,
		Recommendation: "check application logs for error messages",
	},
	2: {
		Code:           2,
		Description:    "Misuse of shell command",
		Category:       models.ExitCommandError,
		Recommendation: "check the container command and arguments",
	},
	126: {
		Code:           126,
		Description:    "Command cannot execute - permission problem",
		Category:       models.ExitCommandError,
		Recommendation: "check file permissions and the image entrypoint",
	},
	127: {
		Code:           127,
		Description:    "Command not found",
		Category:       models.ExitCommandError,
		Recommendation: "check the image entrypoint and PATH",
	},
	128: {
		Code:           128,
		Description:    "Invalid exit argument",
		Category:       models.ExitApplicationError,
		Recommendation: "check application exit handling",
	},
	130: {
		Code:        130,
		Description: "Interrupted (SIGINT)",
		Category:    models.ExitTerminated,
	},
	137: {
		Code:           137,
		Description:    "Killed (SIGKILL) - often OOMKilled in Kubernetes",
		Category:       models.ExitOOMKilled,
		Recommendation: "increase memory limit or investigate leak",
	},
	143: {
		Code:           143,
		Description:    "Terminated (SIGTERM) - graceful shutdown signal",
		Category:       models.ExitTerminated,
		Recommendation: "normal during rolling updates; check why the pod was terminated if unexpected",
	},
}

// ClassifyExitCode is a total lookup over container exit codes.
func ClassifyExitCode(code int) models.ExitCodeInfo {
	if info, ok := exitCodeTable[code]; ok {
		return info
	}
	return models.ExitCodeInfo{
		Code:        code,
		Description: "Unknown error",
		Category:    models.ExitUnknown,
	}
}

package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"vidscribe/internal/config"
)

// Requirement defines an external binary vidscribe invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Requirements lists the binaries the configuration will call.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Frames.FFmpegBinary,
			Description: "Required for frame decoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Frames.FFprobeBinary,
			Description: "Required for media inspection",
		},
		{
			Name:        "Tesseract",
			Command:     cfg.OCR.Binary,
			Description: "Reads on-screen text when analysis.enable_ocr is set",
			Optional:    !cfg.Analysis.EnableOCR,
		},
	}
}

// CheckBinaries evaluates the provided requirements against PATH.
func CheckBinaries(requirements []Requirement) []Result {
	results := make([]Result, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		result := Result{Name: req.Name, Optional: req.Optional}
		if cmd == "" {
			result.Detail = "command not configured"
			results = append(results, result)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			result.Detail = fmt.Sprintf("binary %q not found", cmd)
			if desc := strings.TrimSpace(req.Description); desc != "" {
				result.Detail += " (" + strings.ToLower(desc[:1]) + desc[1:] + ")"
			}
			results = append(results, result)
			continue
		}
		result.Passed = true
		result.Detail = resolved
		results = append(results, result)
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

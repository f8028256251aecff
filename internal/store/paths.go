package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nvandessel/conjoint/internal/sanitize"
)

// DataDirName is the per-project directory holding the database, the trace
// log and study folders.
const DataDirName = ".conjoint"

// studyTimeLayout is the timestamp suffix of study folders.
const studyTimeLayout = "20060102-150405"

// DataDir returns the data directory for the given project root.
func DataDir(projectRoot string) string {
	return filepath.Join(projectRoot, DataDirName)
}

// DBPath returns the SQLite database path for the given project root.
func DBPath(projectRoot string) string {
	return filepath.Join(DataDir(projectRoot), "conjoint.db")
}

// StudyDir returns the folder for one study session,
// .conjoint/studies/<slug>_<YYYYmmdd-HHMMSS>.
func StudyDir(projectRoot, studyName string, at time.Time) string {
	folder := sanitize.StudySlug(studyName) + "_" + at.Format(studyTimeLayout)
	return filepath.Join(DataDir(projectRoot), "studies", folder)
}

// maxStudyDirSuffix bounds the _2, _3, ... suffixes tried for one second.
const maxStudyDirSuffix = 1000

// EnsureStudyDir creates a new, empty study folder and returns its path.
// A folder already taken in the same second gets a _2, _3, ... suffix.
func EnsureStudyDir(projectRoot, studyName string, at time.Time) (string, error) {
	base := StudyDir(projectRoot, studyName, at)
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return "", fmt.Errorf("failed to create studies directory: %w", err)
	}

	dir := base
	for n := 2; ; n++ {
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create study directory: %w", err)
		}
		if n > maxStudyDirSuffix {
			return "", fmt.Errorf("failed to create study directory: %s taken", filepath.Base(base))
		}
		dir = base + "_" + strconv.Itoa(n)
	}
}

package webembed

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alnah/go-webembed/internal/fileutil"
)

// output is one file produced by a build.
type output struct {
	label   string // path as configured, for progress lines
	path    string // absolute target path
	content string
}

// writeOutputs stages every output before renaming any of them, so a
// staging failure leaves all targets untouched. If a rename fails, the
// outputs already renamed are restored.
func writeOutputs(log zerolog.Logger, outputs []output) error {
	staged := make([]*fileutil.Staged, 0, len(outputs))
	defer func() {
		for _, s := range staged {
			s.Discard()
		}
	}()

	for _, o := range outputs {
		s, err := fileutil.Stage(o.path, []byte(o.content))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		staged = append(staged, s)
	}

	for i, s := range staged {
		log.Info().Msg("writing to " + outputs[i].label)
		if err := s.Commit(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rerr := staged[j].Rollback(); rerr != nil {
					log.Warn().Err(rerr).Msg("could not restore " + outputs[j].label)
				}
			}
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	return nil
}

package commands

import (
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/volume"
	"github.com/pterm/pterm"
)

// promptFunc asks the user for a line of text
type promptFunc func(message, defaultText string) (string, error)

func ptermPrompt(message, defaultText string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultText(defaultText).
		Show(message)
}

// newLocator searches the configured directories first and then, when
// running interactively, asks the user where the volume is.
func newLocator(searchPaths []string, interactive bool, search volume.Locator, prompt promptFunc) volume.Locator {
	logger := logging.GetLogger("cmd.locator")

	return volume.LocatorFunc(func(expectedPath string, corrupt bool) (string, error) {
		var searchErr error
		if len(searchPaths) > 0 {
			path, err := search.Volume(expectedPath, corrupt)
			if err == nil {
				return path, nil
			}
			searchErr = err
		}

		if !interactive {
			if searchErr != nil {
				return "", searchErr
			}
			code := errors.ErrVolumeNotFound
			if corrupt {
				code = errors.ErrCorruptVolume
			}
			return "", errors.Newf(code, "volume %s unavailable and no terminal to ask for it", expectedPath)
		}

		state := "missing"
		if corrupt {
			state = "corrupt"
		}
		answer, err := prompt(pterm.Sprintf(MsgVolumePrompt, expectedPath, state), "")
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrIO, "failed to read volume path")
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return "", errors.Newf(errors.ErrVolumeNotFound, MsgErrPromptAbort, expectedPath)
		}
		logger.Info().Str("expected", expectedPath).Str("path", answer).Msg("User supplied volume")
		return answer, nil
	})
}

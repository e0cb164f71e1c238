// Package prompt wraps the terminal confirmation prompt behind a small
// driver so the converter's interactive overwrite policy can be tested
// without a real terminal.
package prompt

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted reports that the user interrupted the prompt (ctrl-c).
var ErrAborted = errors.New("prompt: aborted")

// Driver asks yes/no questions on the terminal.
type Driver struct{}

// New constructs a Driver.
func New() *Driver {
	return &Driver{}
}

// Confirm asks a yes/no question and returns the answer.
func (d *Driver) Confirm(message string, defaultAnswer bool) (bool, error) {
	var out bool
	question := &survey.Confirm{
		Message: message,
		Default: defaultAnswer,
	}
	if err := survey.AskOne(question, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, ErrAborted
		}
		return false, err
	}
	return out, nil
}

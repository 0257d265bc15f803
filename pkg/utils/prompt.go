package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"github.com/picogrid/mdrun/pkg/protocol"
)

// EnvPrefix prefixes environment variables that supply parameter values
const EnvPrefix = "MDRUN_"

// SkipPrompts reports whether prompts must not be shown: either the user
// asked for it or stdin is not a terminal.
func SkipPrompts() bool {
	if os.Getenv(EnvPrefix+"SKIP_PROMPTS") == "true" {
		return true
	}
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptForParameters collects protocol parameters. Values in provided win,
// then MDRUN_<NAME> environment variables, then interactive answers. Without
// a terminal the defaults are used.
func PromptForParameters(params []protocol.Parameter, provided map[string]interface{}) (map[string]interface{}, error) {
	raw := make(map[string]interface{}, len(params))
	for k, v := range provided {
		raw[k] = v
	}

	skip := SkipPrompts()
	for _, param := range params {
		if _, ok := raw[param.Name]; ok {
			continue
		}

		if envValue := os.Getenv(EnvPrefix + strings.ToUpper(param.Name)); envValue != "" {
			if skip {
				raw[param.Name] = envValue
				continue
			}
			// Offer the environment value as the default
			if parsed, err := param.Parse(envValue); err == nil {
				param.Default = parsed
			}
		}
		if skip {
			continue
		}

		value, err := promptForParameter(param)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != "" {
			raw[param.Name] = value
		}
	}

	return protocol.Resolve(params, raw)
}

// promptForParameter asks for one value and returns the answer unparsed;
// validation runs inside the prompt so bad answers are asked again.
func promptForParameter(param protocol.Parameter) (interface{}, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	switch {
	case param.Type == protocol.TypeBoolean:
		defaultBool, _ := param.Default.(bool)
		var result bool
		prompt := &survey.Confirm{Message: param.Description, Default: defaultBool}
		if err := survey.AskOne(prompt, &result); err != nil {
			return nil, err
		}
		return result, nil

	case len(param.Options) > 0:
		var result string
		prompt := &survey.Select{Message: param.Description, Options: param.Options, Default: defaultStr}
		if err := survey.AskOne(prompt, &result); err != nil {
			return nil, err
		}
		return result, nil
	}

	validate := func(val interface{}) error {
		s, _ := val.(string)
		if s == "" {
			if param.Required {
				return fmt.Errorf("value is required")
			}
			return nil
		}
		_, err := param.Parse(s)
		return err
	}

	var result string
	prompt := &survey.Input{Message: param.Description, Default: defaultStr}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(validate)); err != nil {
		return "", err
	}
	return result, nil
}

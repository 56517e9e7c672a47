package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "council.max_workers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// agentNameRegex matches names that can be @mentioned.
var agentNameRegex = regexp.MustCompile(`^\w+$`)

// ValidProviders returns the supported gateway routes.
func ValidProviders() []string {
	return []string{"ollama", "openai", "anthropic"}
}

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats.
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateGateway()...)
	errors = append(errors, c.validateCouncil()...)
	errors = append(errors, c.validateSynthesis()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateAgents()...)

	return errors
}

func (c *Config) validateGateway() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidProviders(), c.Gateway.Provider) {
		errors = append(errors, ValidationError{
			Field:   "gateway.provider",
			Value:   c.Gateway.Provider,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidProviders(), ", ")),
		})
	}

	if c.usesProvider("ollama") {
		if u, err := url.Parse(c.Gateway.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "gateway.base_url",
				Value:   c.Gateway.BaseURL,
				Message: "must be an absolute URL",
			})
		}
	}

	return errors
}

func (c *Config) validateCouncil() []ValidationError {
	var errors []ValidationError

	if c.Council.AgentTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "council.agent_timeout_seconds",
			Value:   c.Council.AgentTimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Council.MaxWorkers < 1 {
		errors = append(errors, ValidationError{
			Field:   "council.max_workers",
			Value:   c.Council.MaxWorkers,
			Message: "must be at least 1",
		})
	}
	if c.Council.MaxDebateExchanges < 1 {
		errors = append(errors, ValidationError{
			Field:   "council.max_debate_exchanges",
			Value:   c.Council.MaxDebateExchanges,
			Message: "must be at least 1",
		})
	}
	if c.Council.ContextWindow < 1 {
		errors = append(errors, ValidationError{
			Field:   "council.context_window",
			Value:   c.Council.ContextWindow,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateSynthesis() []ValidationError {
	var errors []ValidationError

	if c.Synthesis.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "synthesis.model",
			Value:   c.Synthesis.Model,
			Message: "must not be empty",
		})
	}
	if c.Synthesis.Provider != "" && !slices.Contains(ValidProviders(), c.Synthesis.Provider) {
		errors = append(errors, ValidationError{
			Field:   "synthesis.provider",
			Value:   c.Synthesis.Provider,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidProviders(), ", ")),
		})
	}
	if c.Synthesis.Temperature < 0 || c.Synthesis.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "synthesis.temperature",
			Value:   c.Synthesis.Temperature,
			Message: "must be between 0 and 2",
		})
	}
	if c.Synthesis.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "synthesis.timeout_seconds",
			Value:   c.Synthesis.TimeoutSeconds,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateAgents() []ValidationError {
	var errors []ValidationError

	if len(c.Agents) == 0 {
		return append(errors, ValidationError{
			Field:   "agents",
			Value:   0,
			Message: "at least one agent is required",
		})
	}

	seen := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		field := fmt.Sprintf("agents[%d]", i)

		if !agentNameRegex.MatchString(a.Name) {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   a.Name,
				Message: "must be a single word of letters, digits or underscores",
			})
		}
		key := strings.ToLower(a.Name)
		if seen[key] {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   a.Name,
				Message: "duplicate agent name",
			})
		}
		seen[key] = true

		if a.Weight < 0 || a.Weight > 1 {
			errors = append(errors, ValidationError{
				Field:   field + ".weight",
				Value:   a.Weight,
				Message: "must be between 0 and 1",
			})
		}
		if a.Model == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".model",
				Value:   a.Model,
				Message: "must not be empty",
			})
		}
		if a.Provider != "" && !slices.Contains(ValidProviders(), a.Provider) {
			errors = append(errors, ValidationError{
				Field:   field + ".provider",
				Value:   a.Provider,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidProviders(), ", ")),
			})
		}
		if a.Temperature < 0 || a.Temperature > 2 {
			errors = append(errors, ValidationError{
				Field:   field + ".temperature",
				Value:   a.Temperature,
				Message: "must be between 0 and 2",
			})
		}
	}

	return errors
}

// usesProvider reports whether any route resolves to provider.
func (c *Config) usesProvider(provider string) bool {
	return slices.Contains(c.Providers(), provider)
}

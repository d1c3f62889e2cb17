// Package audit writes numbered operational messages for connectors.
//
// Each message has a stable identifier, a severity and a template with
// positional {0}, {1} ... parameters. Messages go to zap with the
// identifier and component attached so they can be filtered and counted.
package audit

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Severity of an audit message.
type Severity string

const (
	SeverityInformation Severity = "Information"
	SeverityEvent       Severity = "Event"
	SeverityDecision    Severity = "Decision"
	SeverityAction      Severity = "Action"
	SeverityError       Severity = "Error"
	SeverityException   Severity = "Exception"
)

// MessageDefinition is one numbered audit message.
type MessageDefinition struct {
	ID         string
	Severity   Severity
	Template   string
	UserAction string
}

// Format renders the template with args.
func (d MessageDefinition) Format(args ...any) string {
	pairs := make([]string, 0, 2*len(args))
	for i, a := range args {
		pairs = append(pairs, fmt.Sprintf("{%d}", i), fmt.Sprint(a))
	}
	return strings.NewReplacer(pairs...).Replace(d.Template)
}

// Messages written by connector context clients.
var (
	ElementCreated = MessageDefinition{
		ID:       "METACTX-CONTEXT-0001",
		Severity: SeverityInformation,
		Template: "The {0} connector created a {1} element with unique identifier {2}",
	}
	ElementDeleted = MessageDefinition{
		ID:       "METACTX-CONTEXT-0002",
		Severity: SeverityInformation,
		Template: "The {0} connector deleted {1} element {2}",
	}
	ClientCallFailed = MessageDefinition{
		ID:         "METACTX-CONTEXT-0003",
		Severity:   SeverityError,
		Template:   "The {0} connector received an error from {1} during {2}: {3}",
		UserAction: "Review the error and the connector configuration, then retry the request",
	}
	ReportPublished = MessageDefinition{
		ID:       "METACTX-CONTEXT-0004",
		Severity: SeverityInformation,
		Template: "The {0} connector published integration report {1} for the {2} phase: {3} created, {4} updated, {5} deleted",
	}
	ServerStarted = MessageDefinition{
		ID:       "METACTX-SERVER-0001",
		Severity: SeverityInformation,
		Template: "Metadata server {0} is listening on {1} with the {2} backend",
	}
	ServerStopped = MessageDefinition{
		ID:       "METACTX-SERVER-0002",
		Severity: SeverityInformation,
		Template: "Metadata server {0} has shut down",
	}
)

// Log writes audit messages for one component.
type Log struct {
	component string
	logger    *zap.Logger
}

// New creates an audit log for component.
func New(component string, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		component: component,
		logger:    logger.With(zap.String("component", component)),
	}
}

// Component returns the component name.
func (l *Log) Component() string {
	return l.component
}

// Log writes a message.
func (l *Log) Log(def MessageDefinition, args ...any) {
	l.write(def, nil, args...)
}

// LogError writes a message with the error attached.
func (l *Log) LogError(def MessageDefinition, err error, args ...any) {
	l.write(def, err, args...)
}

func (l *Log) write(def MessageDefinition, err error, args ...any) {
	fields := []zap.Field{
		zap.String("message_id", def.ID),
		zap.String("severity", string(def.Severity)),
	}
	if def.UserAction != "" {
		fields = append(fields, zap.String("user_action", def.UserAction))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if ce := l.logger.Check(level(def.Severity), def.Format(args...)); ce != nil {
		ce.Write(fields...)
	}
}

func level(s Severity) zapcore.Level {
	switch s {
	case SeverityError, SeverityException:
		return zapcore.ErrorLevel
	case SeverityAction:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

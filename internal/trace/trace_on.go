//go:build asn1kit_debug

package trace

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// SetLevel maps the CLI's --verbose {0,1,2} knob onto logrus levels.
func SetLevel(level int) {
	switch {
	case level <= 0:
		log.SetLevel(logrus.WarnLevel)
	case level == 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.DebugLevel)
	}
}

func fields(event Event, args []any) logrus.Fields {
	f := logrus.Fields{"event": event}
	for i, a := range args {
		f[itoa(i)] = a
	}
	return f
}

func itoa(i int) string {
	if i == 0 {
		return "arg0"
	}
	digits := []byte{}
	n := i
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return "arg" + string(digits)
}

func Enter(event Event, args ...any) {
	log.WithFields(fields(event, args)).Debug("enter")
}

func Exit(event Event, args ...any) {
	log.WithFields(fields(event, args)).Debug("exit")
}

func Info(event Event, args ...any) {
	log.WithFields(fields(event, args)).Info("info")
}

func Emit(event Event, args ...any) {
	log.WithFields(fields(event, args)).Debug("event")
}

func IO(event Event, args ...any) {
	log.WithFields(fields(event, args)).Debug("io")
}

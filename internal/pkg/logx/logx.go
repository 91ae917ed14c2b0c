// Package logx zerolog asosidagi global logger.
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger global loggerni sozlash.
// Development rejimida rangli konsol va Debug daraja, aks holda JSON va Info daraja.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger global logger
func Logger() *zerolog.Logger {
	return &log.Logger
}

// checkFields kalit-qiymat juftligi to'liqligini tekshirish; toq bo'lsa maydonlar tashlab yuboriladi
func checkFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level).
			Msgf("logx (%s) toq sonli maydon oldi: %v", level, fields)
		return nil
	}
	return fields
}

// Debug debug darajadagi log
func Debug(msg string, fields ...any) {
	fields = checkFields("Debug", fields)
	Logger().Debug().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Info info darajadagi log
func Info(msg string, fields ...any) {
	fields = checkFields("Info", fields)
	Logger().Info().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Warn warn darajadagi log
func Warn(msg string, fields ...any) {
	fields = checkFields("Warn", fields)
	Logger().Warn().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Error xato bilan birga log yozish
func Error(err error, msg string, fields ...any) {
	fields = checkFields("Error", fields)
	Logger().Error().Err(err).Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Fatal log yozib, dasturni to'xtatish (os.Exit(1))
func Fatal(err error, msg string, fields ...any) {
	fields = checkFields("Fatal", fields)
	Logger().Fatal().Err(err).Fields(fields).CallerSkipFrame(1).Msg(msg)
}

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Outcome names how the gate finished for one request.
type Outcome string

const (
	OutcomeExempt               Outcome = "exempt"
	OutcomeAnonymous            Outcome = "anonymous"
	OutcomeMalformedToken       Outcome = "malformed_token"
	OutcomeExpiredToken         Outcome = "expired_token"
	OutcomeInvalidArgument      Outcome = "invalid_argument"
	OutcomeUnknownTokenError    Outcome = "unknown_token_error"
	OutcomeIdentityNotFound     Outcome = "identity_not_found"
	OutcomeLookupFailed         Outcome = "lookup_failed"
	OutcomeStaleToken           Outcome = "stale_token"
	OutcomeCancelled            Outcome = "cancelled"
	OutcomeAlreadyAuthenticated Outcome = "already_authenticated"
	OutcomeAuthenticated        Outcome = "authenticated"
)

// OutcomeRecorder counts gate outcomes.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

// Gate authenticates bearer tokens and attaches a SecurityContext to the
// request. It never rejects: failures leave the request anonymous and the
// route's authorization check decides what happens next.
type Gate struct {
	tokens  *TokenManager
	lookup  IdentityLookup
	exempt  *PathMatcher
	logger  *zap.Logger
	metrics OutcomeRecorder
}

// NewGate constructs the gate. exempt and metrics may be nil.
func NewGate(tokens *TokenManager, lookup IdentityLookup, exempt *PathMatcher, logger *zap.Logger, metrics OutcomeRecorder) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, lookup: lookup, exempt: exempt, logger: logger, metrics: metrics}
}

// Handle is the fiber middleware. The request is always forwarded.
func (g *Gate) Handle(c *fiber.Ctx) error {
	ctx, _ := g.Authenticate(c.UserContext(), c.Path(), c.Get(fiber.HeaderAuthorization))
	c.SetUserContext(ctx)
	return c.Next()
}

type gateResult struct {
	outcome Outcome
	subject string
	err     error
}

// Authenticate runs the gate for one request and returns ctx, enriched with a
// SecurityContext when the token and the identity record both check out.
func (g *Gate) Authenticate(ctx context.Context, path, authorization string) (context.Context, Outcome) {
	ctx, res := g.authenticate(ctx, path, authorization)
	g.report(path, res)
	return ctx, res.outcome
}

func (g *Gate) authenticate(ctx context.Context, path, authorization string) (context.Context, gateResult) {
	if g.exempt.Match(path) {
		return ctx, gateResult{outcome: OutcomeExempt}
	}

	if !strings.HasPrefix(authorization, bearerPrefix) {
		return ctx, gateResult{outcome: OutcomeAnonymous}
	}

	claims, err := g.tokens.Decode(authorization[len(bearerPrefix):])
	if err != nil {
		kind, _ := TokenKind(err)
		return ctx, gateResult{outcome: outcomeForKind(kind), err: err}
	}
	subject := ExtractSubject(claims)

	if _, exists := SecurityContextFrom(ctx); exists {
		return ctx, gateResult{outcome: OutcomeAlreadyAuthenticated, subject: subject}
	}
	if err := ctx.Err(); err != nil {
		return ctx, gateResult{outcome: OutcomeCancelled, subject: subject, err: err}
	}

	record, err := g.lookup.Resolve(ctx, subject)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctx, gateResult{outcome: OutcomeCancelled, subject: subject, err: ctxErr}
	}
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return ctx, gateResult{outcome: OutcomeIdentityNotFound, subject: subject, err: err}
		}
		return ctx, gateResult{outcome: OutcomeLookupFailed, subject: subject, err: err}
	}
	if record == nil {
		return ctx, gateResult{outcome: OutcomeIdentityNotFound, subject: subject, err: ErrIdentityNotFound}
	}

	// subject must still name this exact record, and the record must be usable
	if record.Identity != subject || !record.Enabled {
		return ctx, gateResult{outcome: OutcomeStaleToken, subject: subject}
	}

	next, attached := WithSecurityContext(ctx, NewSecurityContext(record.Identity, record.Roles))
	if !attached {
		return ctx, gateResult{outcome: OutcomeAlreadyAuthenticated, subject: subject}
	}
	return next, gateResult{outcome: OutcomeAuthenticated, subject: subject}
}

func (g *Gate) report(path string, res gateResult) {
	if g.metrics != nil {
		g.metrics.RecordAuthOutcome(string(res.outcome))
	}

	fields := []zap.Field{
		zap.String("path", path),
		zap.String("outcome", string(res.outcome)),
	}
	if res.subject != "" {
		fields = append(fields, zap.String("subject", res.subject))
	}
	if res.err != nil {
		fields = append(fields, zap.Error(res.err))
	}

	switch res.outcome {
	case OutcomeLookupFailed:
		g.logger.Error("identity lookup failed; continuing anonymously", fields...)
	case OutcomeStaleToken, OutcomeCancelled:
		g.logger.Warn("token not accepted; continuing anonymously", fields...)
	case OutcomeMalformedToken, OutcomeExpiredToken, OutcomeInvalidArgument,
		OutcomeUnknownTokenError, OutcomeIdentityNotFound:
		g.logger.Info("token rejected; continuing anonymously", fields...)
	default:
		g.logger.Debug("authentication gate", fields...)
	}
}

func outcomeForKind(kind TokenErrorKind) Outcome {
	switch kind {
	case KindMalformedToken:
		return OutcomeMalformedToken
	case KindExpiredToken:
		return OutcomeExpiredToken
	case KindInvalidArgument:
		return OutcomeInvalidArgument
	default:
		return OutcomeUnknownTokenError
	}
}

// Package contact valida emails y teléfonos de clientes y proveedores.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog"
)

var _ ports.ContactVerifier = (*Verifier)(nil)

// Errores de verificación (el mensaje se devuelve al cliente como error de campo).
var (
	ErrInvalidEmail  = errors.New("el email no es válido")
	ErrUnknownDomain = errors.New("el dominio del email no existe")
	ErrInvalidPhone  = errors.New("el teléfono no es válido")
)

const dnsTimeout = 5 * time.Second

// Resolver subconjunto de net.Resolver usado para validar dominios.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Config opciones del verificador.
type Config struct {
	VerifyDNS     bool   // CONTACT_VERIFY_DNS
	DefaultRegion string // CONTACT_DEFAULT_REGION, ISO 3166-1 alpha-2 (ej: CO, US)
}

// Verifier implementa ports.ContactVerifier.
type Verifier struct {
	cfg      Config
	resolver Resolver
	log      zerolog.Logger

	mu      sync.Mutex
	domains map[string]bool // cache: dominio -> resuelve
}

// NewVerifier construye el verificador. resolver nil usa net.DefaultResolver.
func NewVerifier(cfg Config, resolver Resolver, log zerolog.Logger) *Verifier {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = "US"
	}
	cfg.DefaultRegion = strings.ToUpper(cfg.DefaultRegion)
	return &Verifier{cfg: cfg, resolver: resolver, log: log, domains: map[string]bool{}}
}

// CleanEmail quita la etiqueta +tag y normaliza el dominio: "Ana+Promo@Mail.com" -> "Ana@mail.com".
func (v *Verifier) CleanEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if plus := strings.IndexByte(local, '+'); plus > 0 {
		local = local[:plus]
	}
	return local + "@" + strings.ToLower(domain)
}

// VerifyEmail valida la sintaxis y, con VerifyDNS, que el dominio tenga MX o A/AAAA.
func (v *Verifier) VerifyEmail(ctx context.Context, email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") {
		return ErrInvalidEmail
	}
	if !v.cfg.VerifyDNS {
		return nil
	}
	if !v.domainResolves(ctx, domain) {
		return ErrUnknownDomain
	}
	return nil
}

func (v *Verifier) domainResolves(ctx context.Context, domain string) bool {
	v.mu.Lock()
	ok, cached := v.domains[domain]
	v.mu.Unlock()
	if cached {
		return ok
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	ok = true
	if mx, err := v.resolver.LookupMX(ctx, domain); err != nil || len(mx) == 0 {
		hosts, herr := v.resolver.LookupHost(ctx, domain)
		ok = herr == nil && len(hosts) > 0
		if !ok {
			v.log.Debug().Str("domain", domain).AnErr("mx_err", err).AnErr("host_err", herr).Msg("dominio de email no resuelve")
		}
	}
	// Un timeout no se cachea: el dominio puede existir.
	if ctx.Err() != nil {
		return true
	}

	v.mu.Lock()
	v.domains[domain] = ok
	v.mu.Unlock()
	return ok
}

// VerifyPhone valida el número con libphonenumber usando la región por defecto
// cuando no viene en formato internacional.
func (v *Verifier) VerifyPhone(phone string) error {
	num, err := phonenumbers.Parse(phone, v.cfg.DefaultRegion)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPhone, err.Error())
	}
	if !phonenumbers.IsValidNumber(num) {
		return ErrInvalidPhone
	}
	return nil
}

// FormatPhone devuelve el número en formato E.164 o el original si no se puede parsear.
func (v *Verifier) FormatPhone(phone string) string {
	num, err := phonenumbers.Parse(phone, v.cfg.DefaultRegion)
	if err != nil {
		return phone
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

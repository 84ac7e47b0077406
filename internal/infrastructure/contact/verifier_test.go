package contact

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	mx    map[string][]*net.MX
	hosts map[string][]string
	calls atomic.Int32
}

func (f *fakeResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	f.calls.Add(1)
	if mx, ok := f.mx[name]; ok {
		return mx, nil
	}
	return nil, errors.New("no such host")
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if h, ok := f.hosts[host]; ok {
		return h, nil
	}
	return nil, errors.New("no such host")
}

func TestCleanEmail_QuitaEtiquetaYMinusculas(t *testing.T) {
	v := NewVerifier(Config{}, nil, zerolog.Nop())
	assert.Equal(t, "Ana@mail.com", v.CleanEmail("  Ana+Promo@Mail.com "))
	assert.Equal(t, "ana@mail.com", v.CleanEmail("ana@mail.com"))
	assert.Equal(t, "sin-arroba", v.CleanEmail("sin-arroba"))
}

func TestVerifyEmail_Sintaxis(t *testing.T) {
	v := NewVerifier(Config{}, nil, zerolog.Nop())
	ctx := context.Background()
	assert.NoError(t, v.VerifyEmail(ctx, "ana@mail.com"))
	assert.ErrorIs(t, v.VerifyEmail(ctx, "ana@"), ErrInvalidEmail)
	assert.ErrorIs(t, v.VerifyEmail(ctx, "Ana <ana@mail.com>"), ErrInvalidEmail)
	assert.ErrorIs(t, v.VerifyEmail(ctx, "ana@localhost"), ErrInvalidEmail)
}

func TestVerifyEmail_DNSConCache(t *testing.T) {
	r := &fakeResolver{
		mx:    map[string][]*net.MX{"mail.com": {{Host: "mx.mail.com.", Pref: 10}}},
		hosts: map[string][]string{"solo-a.com": {"10.0.0.1"}},
	}
	v := NewVerifier(Config{VerifyDNS: true}, r, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, v.VerifyEmail(ctx, "ana@mail.com"))
	require.NoError(t, v.VerifyEmail(ctx, "luis@mail.com"))
	assert.Equal(t, int32(1), r.calls.Load(), "el segundo email del mismo dominio usa la cache")

	assert.NoError(t, v.VerifyEmail(ctx, "ana@solo-a.com"))
	assert.ErrorIs(t, v.VerifyEmail(ctx, "ana@no-existe.com"), ErrUnknownDomain)
}

func TestVerifyPhone(t *testing.T) {
	v := NewVerifier(Config{DefaultRegion: "us"}, nil, zerolog.Nop())
	assert.NoError(t, v.VerifyPhone("+1 650-253-0000"))
	assert.NoError(t, v.VerifyPhone("(650) 253-0000"))
	assert.ErrorIs(t, v.VerifyPhone("123"), ErrInvalidPhone)
	assert.ErrorIs(t, v.VerifyPhone("no es un teléfono"), ErrInvalidPhone)
	assert.Equal(t, "+16502530000", v.FormatPhone("(650) 253-0000"))
}

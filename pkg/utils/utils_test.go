package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Transportes Silva", "Transportes Silva", 100},
		{"case and space insensitive", "  transportes SILVA ", "Transportes Silva", 100},
		{"empty left", "", "Silva", 0},
		{"empty right", "Silva", "   ", 0},
		{"half overlap", "frota sul", "frota norte", 100.0 / 3},
		{"subset", "silva", "transportes silva", 50},
		{"disjoint", "alpha", "beta", 0},
		{"duplicate tokens collapse", "silva silva", "silva", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{{"locadora central", "central locadora frotas"}, {"a b c", "c d"}, {"x", ""}}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "pair %v", p)
	}
}

func TestContainsAny(t *testing.T) {
	kw := []string{"diretor", "ceo"}
	assert.True(t, ContainsAny("Diretora Comercial", kw))
	assert.True(t, ContainsAny("CEO", kw))
	assert.False(t, ContainsAny("Analista", kw))
	assert.False(t, ContainsAny("", kw))
}

func TestPhoneHelpers(t *testing.T) {
	assert.Equal(t, "11987654321", ExtractPhoneDigits("(11) 98765-4321"))
	assert.Equal(t, "11987654", PhonePrefix("(11) 98765-4321", 8))
	assert.Equal(t, "", PhonePrefix("1234", 8))
	assert.Equal(t, []string{"1133334444", "11987654321"}, PhoneDigitsList("(11) 3333-4444", "", "11 98765 4321"))
	assert.Equal(t, "11987654321", NormalizeBRPhone("+55 (11) 98765-4321"))
	assert.Equal(t, "1133334444", NormalizeBRPhone("011 3333-4444"))
}

func TestWebsiteHost(t *testing.T) {
	tests := map[string]string{
		"https://www.Frota.com.br/contato": "frota.com.br",
		"http://frota.com.br":              "frota.com.br",
		"www.frota.com.br?x=1":             "frota.com.br",
		"frota.com.br:8080/a":              "frota.com.br",
		"":                                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, WebsiteHost(in), in)
	}
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "frota.com.br", EmailDomain("Joao@Frota.COM.br"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
	assert.Equal(t, "", EmailDomain("trailing@"))
}

func TestAddressHelpers(t *testing.T) {
	assert.Equal(t, "01310100", NormalizeCEP("01310-100"))
	assert.Equal(t, "", NormalizeCEP("1310-100"))
	assert.Equal(t, "SP", NormalizeUF(" sp "))
	assert.Equal(t, "", NormalizeUF("XX"))
	assert.Equal(t, "avenida paulista 1000", NormalizeStreet("Av. Paulista, 1000"))
}

func BenchmarkSimilarity(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Similarity("Locadora Central de Veiculos Ltda", "Central Veiculos Locadora")
	}
}

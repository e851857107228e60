package fiscal

import (
	"regexp"
	"strings"

	"github.com/tn-gestion/backend/internal/domain/shared"
)

// matriculePattern matches a compacted matricule fiscal:
// 7 digits, check letter, TVA code, category code, 3-digit establishment number.
var matriculePattern = regexp.MustCompile(`^(\d{7})([A-HJ-NP-TV-Z])([ABDNP])([MPCNE])(\d{3})$`)

// MatriculeFiscal is a normalised Tunisian tax identifier,
// e.g. "1234567A/A/M/000".
type MatriculeFiscal string

// ParseMatriculeFiscal validates and normalises a matricule fiscal.
// Slashes, dashes, dots and spaces are ignored on input. The check letter
// never uses I, O or U.
func ParseMatriculeFiscal(s string) (MatriculeFiscal, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '/', ' ', '-', '.':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(s)))

	m := matriculePattern.FindStringSubmatch(compact)
	if m == nil {
		return "", shared.NewDomainError("INVALID_MATRICULE_FISCAL", "Invalid matricule fiscal: expected format 1234567A/A/M/000")
	}
	return MatriculeFiscal(m[1] + m[2] + "/" + m[3] + "/" + m[4] + "/" + m[5]), nil
}

// String returns the normalised form
func (m MatriculeFiscal) String() string {
	return string(m)
}

// IsHeadOffice reports whether the establishment number is 000
func (m MatriculeFiscal) IsHeadOffice() bool {
	return strings.HasSuffix(string(m), "/000")
}

// TVACode returns the TVA regime letter (A, B, D, N or P)
func (m MatriculeFiscal) TVACode() string {
	parts := strings.Split(string(m), "/")
	if len(parts) != 4 {
		return ""
	}
	return parts[1]
}

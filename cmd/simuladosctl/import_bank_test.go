package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadBankFile(t *testing.T) {
	path := writeFile(t, `{
		"nome": "Cardiologia",
		"questoes": [{
			"enunciado": "Qual o principal marca-passo do coração?",
			"alternativas": [
				{"texto": "Nó sinoatrial", "correta": true},
				{"texto": "Nó atrioventricular"}
			],
			"disciplina": "Cardiologia",
			"assunto": "Eletrofisiologia",
			"dificuldade": "facil"
		}]
	}`)

	req, err := loadBankFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Cardiologia", req.Name)
	require.Len(t, req.Questions, 1)
	assert.Len(t, req.Questions[0].Alternatives, 2)
	assert.True(t, req.Questions[0].Alternatives[0].Correct)
}

func TestLoadBankFile_Rejects(t *testing.T) {
	cases := map[string]string{
		"malformed json":  `{"nome": `,
		"missing name":    `{"questoes": []}`,
		"bad difficulty":  `{"nome": "Pediatria", "questoes": [{"enunciado": "x", "alternativas": [{"texto": "a"}, {"texto": "b"}], "disciplina": "Pediatria", "assunto": "y", "dificuldade": "impossivel"}]}`,
		"one alternative":  `{"nome": "Pediatria", "questoes": [{"enunciado": "x", "alternativas": [{"texto": "a"}], "disciplina": "Pediatria", "assunto": "y", "dificuldade": "facil"}]}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadBankFile(writeFile(t, body))
			assert.Error(t, err)
		})
	}

	_, err := loadBankFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

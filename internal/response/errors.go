package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrNotExamOwner  ErrCode = "NOT_EXAM_OWNER"
	ErrOriginBlocked ErrCode = "ORIGIN_NOT_ALLOWED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrBankNotFound     ErrCode = "BANK_NOT_FOUND"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"
	ErrInvalidQuestion  ErrCode = "INVALID_QUESTION"

	// ─── Exam session ──────────────────────────────────────────────────
	ErrExamNotFound       ErrCode = "EXAM_NOT_FOUND"
	ErrExamClosed         ErrCode = "EXAM_CLOSED"
	ErrSessionNotStarted  ErrCode = "SESSION_NOT_STARTED"
	ErrExamNotCompleted   ErrCode = "EXAM_NOT_COMPLETED"
	ErrExamInProgress     ErrCode = "EXAM_IN_PROGRESS"
	ErrUnknownQuestion    ErrCode = "UNKNOWN_QUESTION"
	ErrUnknownAlternative ErrCode = "UNKNOWN_ALTERNATIVE"
	ErrConfirmRequired    ErrCode = "CONFIRMATION_REQUIRED"
	ErrNoQuestions        ErrCode = "NO_QUESTIONS"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrPersistence ErrCode = "PERSISTENCE_ERROR"
	ErrInternal    ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Token de autenticação obrigatório."
	case ErrTokenInvalid:
		return "Token de autenticação inválido ou expirado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Você não tem permissão para acessar este recurso."
	case ErrNotExamOwner:
		return "Este simulado pertence a outro usuário."
	case ErrOriginBlocked:
		return "Origem não permitida."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Falha na validação dos dados."
	case ErrInvalidID:
		return "Identificador inválido."
	case ErrInvalidPayload:
		return "Corpo da requisição inválido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso não encontrado."
	case ErrBankNotFound:
		return "Banco de questões não encontrado."
	case ErrQuestionNotFound:
		return "Questão não encontrada."
	case ErrInvalidQuestion:
		return "A questão precisa de 2 a 5 alternativas e exatamente uma correta."

	// ─── Exam session ──────────────────────────────────────────────────
	case ErrExamNotFound:
		return "Simulado não encontrado."
	case ErrExamClosed:
		return "Este simulado já foi concluído."
	case ErrSessionNotStarted:
		return "O simulado ainda não foi iniciado."
	case ErrExamNotCompleted:
		return "O resultado só fica disponível após a conclusão do simulado."
	case ErrExamInProgress:
		return "Não é possível excluir um simulado em andamento."
	case ErrUnknownQuestion:
		return "A questão não pertence a este simulado."
	case ErrUnknownAlternative:
		return "A alternativa não pertence a esta questão."
	case ErrConfirmRequired:
		return "Existem questões sem resposta. Confirme para finalizar mesmo assim."
	case ErrNoQuestions:
		return "Nenhuma questão disponível para as disciplinas escolhidas."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Arquivo obrigatório."
	case ErrUnsupportedFile:
		return "Tipo de arquivo não suportado."
	case ErrFileTooLarge:
		return "O arquivo excede o tamanho máximo permitido."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Muitas requisições. Tente novamente mais tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrPersistence:
		return "Não foi possível salvar os dados. Tente novamente."
	case ErrInternal:
		return "Erro interno do servidor."

	default:
		return "Ocorreu um erro inesperado."
	}
}

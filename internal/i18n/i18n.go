// Package i18n maps validation/business failures to localized messages,
// and validates the account/display-name/password/email constraints of
// spec §4.2. Ported from the original Rust i18n.rs + utils.rs (English,
// Spanish, French string tables keyed by the same failure kinds).
package i18n

import (
	"fmt"
	"regexp"

	"github.com/brnhrs/warhorse-server/internal/store"
)

// Language re-exports store.Language so callers of this package don't need
// to import store just to pick a language.
type Language = store.Language

const (
	English = store.English
	Spanish = store.Spanish
	French  = store.French
)

// Field length/format constraints (spec §6 Field constraints).
const (
	AccountNameMinLength = 3
	AccountNameMaxLength = 20
	DisplayNameMinLength = 3
	DisplayNameMaxLength = 20
	PasswordMinLength    = 8
	EmailMaxLength       = 254
)

// ErrorKind enumerates every business/validation failure in spec §4.2.
type ErrorKind int

const (
	InvalidPassword ErrorKind = iota
	InvalidAccountName
	InvalidDisplayName
	InvalidEmail
	AccountNameTaken
	EmailTaken
	InvalidLogin
	AlreadyFriends
	UserBlocked
	NotConnected
	NotFriends
	NotInRoom
	UnknownUser
	SelfTargeted
	Internal
)

// Error is a localized business failure. It carries the kind so callers
// can branch on it (e.g. the dispatcher never disconnects the session for
// one of these) and the message already resolved to the request's
// language.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds a localized Error for kind in lang.
func New(kind ErrorKind, lang store.Language) *Error {
	return &Error{Kind: kind, Message: Message(kind, lang)}
}

// Message resolves kind to a human-readable string in lang. Unknown
// languages fall back to English, matching the reference server's default.
func Message(kind ErrorKind, lang store.Language) string {
	switch kind {
	case InvalidPassword:
		return pick(lang,
			fmt.Sprintf("Passwords must be at least %d characters long", PasswordMinLength),
			fmt.Sprintf("Las contraseñas deben tener al menos %d caracteres", PasswordMinLength),
			fmt.Sprintf("Les mots de passe doivent comporter au moins %d caractères", PasswordMinLength))
	case InvalidAccountName:
		return pick(lang,
			fmt.Sprintf("Account names must be between %d and %d characters long", AccountNameMinLength, AccountNameMaxLength),
			fmt.Sprintf("Los nombres de cuenta deben tener entre %d y %d caracteres", AccountNameMinLength, AccountNameMaxLength),
			fmt.Sprintf("Les noms de compte doivent comporter entre %d et %d caractères", AccountNameMinLength, AccountNameMaxLength))
	case InvalidDisplayName:
		return pick(lang,
			fmt.Sprintf("Display names must be between %d and %d characters long", DisplayNameMinLength, DisplayNameMaxLength),
			fmt.Sprintf("Los nombres de visualización deben tener entre %d y %d caracteres", DisplayNameMinLength, DisplayNameMaxLength),
			fmt.Sprintf("Les noms d'affichage doivent comporter entre %d et %d caractères", DisplayNameMinLength, DisplayNameMaxLength))
	case InvalidEmail:
		return pick(lang, "Invalid email", "Correo electrónico inválido", "Email invalide")
	case AccountNameTaken:
		return pick(lang, "Account name already exists", "El nombre de la cuenta ya existe", "Le nom du compte existe déjà")
	case EmailTaken:
		return pick(lang, "Email already exists", "El correo electrónico ya existe", "L'email existe déjà")
	case InvalidLogin:
		return pick(lang,
			"Invalid login, please ensure the information is correct",
			"Inicio de sesión inválido, asegúrese de que la información sea correcta",
			"Connexion invalide, veuillez vous assurer que les informations sont correctes")
	case AlreadyFriends:
		return pick(lang, "You are already friends with this user", "Ya eres amigo de este usuario", "Vous êtes déjà ami avec cet utilisateur")
	case UserBlocked:
		return pick(lang, "This user is blocked", "Este usuario está bloqueado", "Cet utilisateur est bloqué")
	case NotConnected:
		return pick(lang, "That user is not connected", "Ese usuario no está conectado", "Cet utilisateur n'est pas connecté")
	case NotFriends:
		return pick(lang, "You are not friends with this user", "No eres amigo de este usuario", "Vous n'êtes pas ami avec cet utilisateur")
	case NotInRoom:
		return pick(lang, "You are not in that room", "No estás en esa sala", "Vous n'êtes pas dans ce salon")
	case UnknownUser:
		return pick(lang, "That user does not exist", "Ese usuario no existe", "Cet utilisateur n'existe pas")
	case SelfTargeted:
		return pick(lang, "You cannot target yourself", "No puedes apuntarte a ti mismo", "Vous ne pouvez pas vous cibler vous-même")
	default:
		return pick(lang, "An internal error occurred", "Se produjo un error interno", "Une erreur interne s'est produite")
	}
}

// HelloMessage is the localized welcome string sent on new session (§4.6).
func HelloMessage(lang store.Language) string {
	return pick(lang,
		"You are now connected to the Warhorse server",
		"Ahora estás conectado al servidor de Warhorse",
		"Vous êtes maintenant connecté au serveur Warhorse")
}

func pick(lang store.Language, en, es, fr string) string {
	switch lang {
	case store.Spanish:
		return es
	case store.French:
		return fr
	default:
		return en
	}
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string, lang store.Language) *Error {
	if len(password) < PasswordMinLength {
		return New(InvalidPassword, lang)
	}
	return nil
}

// ValidateAccountName enforces account-name length bounds.
func ValidateAccountName(name string, lang store.Language) *Error {
	if len(name) < AccountNameMinLength || len(name) > AccountNameMaxLength {
		return New(InvalidAccountName, lang)
	}
	return nil
}

// ValidateDisplayName enforces display-name length bounds.
func ValidateDisplayName(name string, lang store.Language) *Error {
	if len(name) < DisplayNameMinLength || len(name) > DisplayNameMaxLength {
		return New(InvalidDisplayName, lang)
	}
	return nil
}

// emailRegexp is an RFC-5322-pragmatic pattern: ASCII-punctuation local
// part, dot-separated alphanumeric-bounded domain labels.
var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// IsValidEmail reports whether email matches the pragmatic RFC-5322 form
// and is within the 254-byte length cap.
func IsValidEmail(email string) bool {
	if len(email) > EmailMaxLength {
		return false
	}
	return emailRegexp.MatchString(email)
}

// ValidateEmail enforces email validity.
func ValidateEmail(email string, lang store.Language) *Error {
	if !IsValidEmail(email) {
		return New(InvalidEmail, lang)
	}
	return nil
}

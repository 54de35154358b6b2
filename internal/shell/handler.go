package shell

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/authshell/authshell/internal/auth"
	"github.com/authshell/authshell/internal/navigation"
)

// Handler exposes the shell intents over HTTP for the presentation layer.
type Handler struct {
	shell *Shell
}

// NewHandler constructs a shell HTTP handler.
func NewHandler(shell *Shell) *Handler {
	return &Handler{shell: shell}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Name            string `json:"name"`
	MobileNumber    string `json:"mobileNumber"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type outcomeResponse struct {
	Outcome      string            `json:"outcome"`
	Errors       map[string]string `json:"errors,omitempty"`
	Message      string            `json:"message,omitempty"`
	StorageError string            `json:"storage_error,omitempty"`
	View         View              `json:"view"`
}

type viewResponse struct {
	View  View   `json:"view"`
	Error string `json:"error,omitempty"`
}

// Screen returns the current navigation state.
func (h *Handler) Screen(c *fiber.Ctx) error {
	return c.JSON(viewResponse{View: h.shell.View()})
}

// Launch resolves the splash screen.
func (h *Handler) Launch(c *fiber.Ctx) error {
	view, err := h.shell.Launch(c.UserContext())
	return h.respondView(c, view, err)
}

// Navigate follows a form link or goes back.
func (h *Handler) Navigate(c *fiber.Ctx) error {
	var (
		view View
		err  error
	)
	switch c.Params("target") {
	case "signup":
		view, err = h.shell.ShowSignUp()
	case "signin":
		view, err = h.shell.ShowSignIn()
	case "back":
		view, err = h.shell.Back()
	default:
		return fiber.NewError(http.StatusNotFound, "unknown navigation target")
	}
	return h.respondView(c, view, err)
}

// SignIn submits the sign-in form.
func (h *Handler) SignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.shell.SubmitSignIn(c.UserContext(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return submitError(err)
	}
	return respondOutcome(c, res, http.StatusUnauthorized)
}

// SignUp submits the sign-up form.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.shell.SubmitSignUp(c.UserContext(), auth.SignUpInput{
		Name:            req.Name,
		MobileNumber:    req.MobileNumber,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return submitError(err)
	}
	return respondOutcome(c, res, http.StatusBadRequest)
}

// Logout ends the session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	view, err := h.shell.Logout(c.UserContext())
	if err != nil && !isConflict(err) {
		// The flow already moved to Splash; report the storage failure.
		return c.Status(http.StatusInternalServerError).JSON(viewResponse{View: view, Error: "failed to clear session"})
	}
	return h.respondView(c, view, err)
}

// Home returns the data shown on the Home screen.
func (h *Handler) Home(c *fiber.Ctx) error {
	view := h.shell.View()
	if view.Screen != navigation.Home {
		return fiber.NewError(http.StatusConflict, "home screen is not visible")
	}
	name, err := h.shell.Greeting(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to read profile")
	}
	return c.JSON(fiber.Map{"name": name, "view": view})
}

func (h *Handler) respondView(c *fiber.Ctx, view View, err error) error {
	switch {
	case err == nil:
		return c.JSON(viewResponse{View: view})
	case isConflict(err), errors.Is(err, navigation.ErrNoHistory):
		return c.Status(http.StatusConflict).JSON(viewResponse{View: view, Error: err.Error()})
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

func submitError(err error) error {
	switch {
	case isConflict(err):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

// isConflict reports errors caused by the intent not fitting the current
// screen or an outstanding submit.
func isConflict(err error) bool {
	return errors.Is(err, auth.ErrSubmissionInProgress) ||
		errors.Is(err, ErrWrongScreen) ||
		errors.Is(err, navigation.ErrInvalidTransition)
}

func respondOutcome(c *fiber.Ctx, res SubmitResult, failedStatus int) error {
	body := outcomeResponse{
		Outcome: res.Outcome.Kind.String(),
		Errors:  res.Outcome.Errors,
		Message: res.Outcome.Message,
		View:    res.View,
	}
	if res.Outcome.StorageErr != nil {
		body.StorageError = "session could not be saved on this device"
	}

	status := http.StatusOK
	switch res.Outcome.Kind {
	case auth.Invalid:
		status = http.StatusUnprocessableEntity
	case auth.Failed:
		status = failedStatus
	}
	return c.Status(status).JSON(body)
}

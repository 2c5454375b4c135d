package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kkscorpz/Job-Tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const dateLayout = "2006-01-02"

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.GET("/logout", logoutHandler)
	r.GET("/login", loginPage)
	r.GET("/register", registerPage)

	pages := r.Group("")
	pages.Use(pageAuthMiddleware())
	pages.GET("/", dashboardPage)
	pages.GET("/notes", notesPage)
	pages.GET("/analytics", analyticsPage)
	pages.GET("/settings", settingsPage)

	api := r.Group("/api")
	api.Use(jwtAuthMiddleware())
	api.GET("/applications", listApplicationsHandler)
	api.POST("/applications/add", addApplicationHandler)
	api.DELETE("/applications/:id/delete", deleteApplicationHandler)
	api.GET("/applications/:id/notes", listNotesHandler)
	api.POST("/applications/:id/notes/add", addNoteHandler)
	api.PUT("/applications/:id/notes/:noteId/update", updateNoteHandler)
	api.DELETE("/applications/:id/notes/:noteId/delete", deleteNoteHandler)
}

// issueToken signs a 24h JWT for the given user.
func issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString(jwtSecret)
}

func setTokenCookie(c *gin.Context, token string) {
	c.SetCookie("token", token, 24*3600, "/", "", false, true)
}

// tokenFromRequest reads the JWT from the Authorization header (API clients)
// or the token cookie (browsers).
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return "", errors.New("invalid claims")
	}
	return username, nil
}

// jwtAuthMiddleware guards API routes: unauthenticated requests get a 401.
func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}
		username, err := parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Set("username", username)
		c.Next()
	}
}

// pageAuthMiddleware guards page routes: unauthenticated browsers are sent
// to the login page instead of getting a JSON error.
func pageAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		username, err := parseToken(tokenString)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set("username", username)
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated user using the username set by the auth middleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// apiError reports a handled failure in the uniform {success:false, error}
// shape. The raw error text is returned as-is; see DESIGN.md.
func apiError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// Wire representations. The API speaks camelCase; storage columns are
// snake_case, so the translation is explicit here.
type applicationJSON struct {
	ID          uint   `json:"id"`
	CompanyName string `json:"companyName"`
	JobTitle    string `json:"jobTitle"`
	Status      string `json:"status"`
	Method      string `json:"method"`
}

type noteJSON struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func toApplicationJSON(app models.Application) applicationJSON {
	return applicationJSON{
		ID:          app.ID,
		CompanyName: app.CompanyName,
		JobTitle:    app.JobTitle,
		Status:      app.Status,
		Method:      app.Method,
	}
}

func toNoteJSON(n models.Note) noteJSON {
	return noteJSON{ID: n.ID, Title: n.Title, Body: n.Body, CreatedAt: n.CreatedAt}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := RegisterUser(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	// sign the new user in right away
	tokenString, err := issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	setTokenCookie(c, tokenString)
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully", "token": tokenString})
}

func loginHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	setTokenCookie(c, tokenString)
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}

func logoutHandler(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

// listApplicationsHandler returns the requester's applications, newest
// application date first. An empty list is a 200, not an error.
func listApplicationsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	apps, err := listApplications(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]applicationJSON, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationJSON(app))
	}
	c.JSON(http.StatusOK, gin.H{"applications": out})
}

type addApplicationRequest struct {
	CompanyName     string `json:"companyName" binding:"required"`
	JobTitle        string `json:"jobTitle" binding:"required"`
	ApplicationDate string `json:"applicationDate" binding:"required"`
	Method          string `json:"method"`
	ContactInfo     string `json:"contactInfo"`
	Email           string `json:"email" binding:"omitempty,email"`
	Status          string `json:"status" binding:"omitempty,oneof=Applied Interview Offer Rejected"`
	Notes           string `json:"notes"`
}

func addApplicationHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req addApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	date, err := time.Parse(dateLayout, req.ApplicationDate)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	status := req.Status
	if status == "" {
		status = models.StatusApplied
	}
	app := models.Application{
		CompanyName:     req.CompanyName,
		JobTitle:        req.JobTitle,
		ApplicationDate: date,
		Method:          req.Method,
		ContactInfo:     req.ContactInfo,
		Email:           req.Email,
		Status:          status,
		Notes:           req.Notes,
	}
	if err := createApplication(user.ID, &app); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"application_id": app.ID,
		"application":    toApplicationJSON(app),
	})
}

func deleteApplicationHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	appID, err := paramID(c, "id")
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	if err := deleteApplication(user.ID, appID); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// listNotesHandler returns an owned application together with its notes,
// newest first. An application that is missing or owned by someone else is
// a 404.
func listNotesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	appID, err := paramID(c, "id")
	if err != nil {
		apiError(c, http.StatusNotFound, err)
		return
	}
	app, notes, err := listNotes(user.ID, appID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			apiError(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteJSON(n))
	}
	c.JSON(http.StatusOK, gin.H{
		"application": gin.H{
			"id":          app.ID,
			"companyName": app.CompanyName,
			"jobTitle":    app.JobTitle,
		},
		"notes": out,
	})
}

type addNoteRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

func addNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	appID, err := paramID(c, "id")
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	note, err := createNote(user.ID, appID, req.Title, req.Body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "note": toNoteJSON(note)})
}

type updateNoteRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// updateNoteHandler applies a partial update: omitted fields keep their
// prior value.
func updateNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	appID, err := paramID(c, "id")
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	noteID, err := paramID(c, "noteId")
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	note, err := updateNote(user.ID, appID, noteID, req.Title, req.Body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"note": gin.H{
			"id":    note.ID,
			"title": note.Title,
			"body":  note.Body,
		},
	})
}

func deleteNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	appID, err := paramID(c, "id")
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	noteID, err := paramID(c, "noteId")
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	if err := deleteNote(user.ID, appID, noteID); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

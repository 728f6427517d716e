package users

// unique constraints on the users table; duplicate inserts are detected by name
const (
	constraintEmail    = "users_email_key"
	constraintGoogleID = "users_google_id_key"
)

const userColumns = `id, email, name, password, google_id, created_at, updated_at`

const (
	queryCreate = `
		INSERT INTO users (email, name, password, google_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	queryFindByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	queryFindByGoogleID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE google_id = $1
	`

	queryUpdate = `
		UPDATE users
		SET name = COALESCE($2, name),
			google_id = COALESCE($3, google_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
)

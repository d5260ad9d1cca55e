package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS job (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	title VARCHAR(128) NOT NULL,
// 	description TEXT,
// 	short_description VARCHAR(255),
// 	category_id CHAR(27),
// 	company_id CHAR(27),
// 	user_id VARCHAR(64) NOT NULL,
// 	is_published BOOLEAN NOT NULL DEFAULT FALSE,
// 	shift_timing VARCHAR(32),
// 	work_mode VARCHAR(32),
// 	years_of_experience VARCHAR(32),
// 	tags TEXT[] NOT NULL DEFAULT '{}',
// 	saved_users TEXT[] NOT NULL DEFAULT '{}',
// 	slug VARCHAR(160) NOT NULL,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
// CREATE INDEX job_created_at_idx ON job (created_at DESC);
// CREATE INDEX job_category_id_idx ON job (category_id);

// CREATE TABLE IF NOT EXISTS company (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	name VARCHAR(128) NOT NULL,
// 	description TEXT,
// 	overview TEXT,
// 	why_join_us TEXT,
// 	website VARCHAR(255),
// 	twitter VARCHAR(255),
// 	linkedin VARCHAR(255),
// 	address_line VARCHAR(255),
// 	city VARCHAR(64),
// 	zipcode VARCHAR(16),
// 	logo_image_id CHAR(27),
// 	followers TEXT[] NOT NULL DEFAULT '{}',
// 	user_id VARCHAR(64) NOT NULL,
// 	slug VARCHAR(160) NOT NULL,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );

// CREATE TABLE IF NOT EXISTS category (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	name VARCHAR(64) NOT NULL UNIQUE,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );

// CREATE TABLE IF NOT EXISTS user_profile (
// 	user_id VARCHAR(64) NOT NULL UNIQUE,
// 	full_name VARCHAR(128),
// 	email VARCHAR(255),
// 	contact VARCHAR(64),
// 	active_resume_id CHAR(27),
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(user_id)
// );

// CREATE TABLE IF NOT EXISTS applied_job (
// 	user_id VARCHAR(64) NOT NULL,
// 	job_id CHAR(27) NOT NULL,
// 	applied_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(user_id, job_id)
// );

// CREATE TABLE IF NOT EXISTS resume (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	user_id VARCHAR(64) NOT NULL,
// 	name VARCHAR(128) NOT NULL,
// 	url VARCHAR(255) NOT NULL,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id),
// 	UNIQUE(user_id, url)
// );

// CREATE TABLE IF NOT EXISTS attachment (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	job_id CHAR(27) NOT NULL,
// 	name VARCHAR(128) NOT NULL,
// 	url VARCHAR(255) NOT NULL,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
// CREATE INDEX attachment_job_id_idx ON attachment (job_id);

func GetDbConn(databaseUser string, databasePassword string, databaseHost string, databasePort string, databaseName string, sslMode string) (*sql.DB, error) {
	databaseURL := fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=%s",
		databaseUser,
		databasePassword,
		databaseHost,
		databasePort,
		databaseName,
		sslMode,
	)
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}

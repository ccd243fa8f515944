// Package email sends transactional emails through Postmark
// (github.com/mrz1836/postmark) or, in development, writes them to disk.
//
// New picks the implementation from Config: a Postmark client when
// POSTMARK_SERVER_TOKEN is set, a DevSender otherwise. Both validate
// SendEmailParams before doing any work and report delivery problems wrapped
// in ErrFailedToSendEmail.
package email

package constant

const EmailBookingConfirmationTemplate = `
Dear %s,

Thank you for your booking request! We have received it and our team will confirm availability shortly.

Booking Details:
------------------------------------------
Booking ID: %s
Venue: %s
Date: %s
Rate: %s per hour
Status: %s
------------------------------------------

What happens next:
1. Our events team reviews your request within one business day
2. You will receive a confirmation email with the final quote
3. Your date is held for 48 hours while we confirm

If you have any questions, please reply to this email or use the contact form on our website.

Best regards,
Venue Booking Team

Note: This is an automated message, please do not reply to this email.
`

const EmailContactNotificationTemplate = `
Hello %s,

A new enquiry was submitted for "%s".

From: %s <%s>
------------------------------------------
%s
------------------------------------------

Please reply to the sender directly.

Venue Booking
`

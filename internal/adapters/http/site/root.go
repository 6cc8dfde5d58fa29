// Package site serves the public booking form page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Register attaches the booking form page to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", handleRoot)
}

// handleRoot serves the booking form at / and 404s everything unmatched.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

// indexHTML is the booking form. The hidden honeypot input stays empty for
// humans; bots that fill every field out themselves.
const indexHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Vallarta Sunsets – Book an Experience</title>
    <style>
      body{font-family:system-ui,sans-serif;margin:0;background:#fdf6ee;color:#333}
      main{max-width:540px;margin:3rem auto;padding:0 1rem}
      h1{color:#c75b12}
      label{display:block;margin-top:1rem;font-weight:600}
      input,textarea{width:100%;padding:.5rem;margin-top:.25rem;border:1px solid #ccc;border-radius:4px}
      button{margin-top:1.5rem;padding:.6rem 1.4rem;background:#c75b12;color:#fff;border:none;border-radius:4px;cursor:pointer}
      .hp-field{display:none}
      #result{margin-top:1rem}
    </style>
  </head>
  <body>
    <main>
      <h1>Book a Puerto Vallarta Sunset</h1>
      <p>Tell us what you are looking for and a local partner will get back to you.</p>
      <form id="booking-form">
        <label>Name <input name="name" autocomplete="name"></label>
        <label>Email <input name="email" type="email" required autocomplete="email"></label>
        <label>What are you dreaming of? <textarea name="message" rows="4" required></textarea></label>
        <label>Date <input name="date" type="date"></label>
        <label>Guests <input name="guests" type="number" min="0" value="2"></label>
        <div class="hp-field" aria-hidden="true">
          <label>Website <input name="honeypot" tabindex="-1" autocomplete="off"></label>
        </div>
        <button type="submit">Request booking</button>
      </form>
      <p id="result"></p>
    </main>
    <script>
      document.getElementById('booking-form').addEventListener('submit', async function (e) {
        e.preventDefault();
        const f = e.target;
        const body = {
          name: f.name.value,
          email: f.email.value,
          message: f.message.value,
          date: f.date.value,
          guests: parseInt(f.guests.value || '0', 10),
          source_path: location.pathname,
          honeypot: f.honeypot.value
        };
        const result = document.getElementById('result');
        try {
          const resp = await fetch('/bookings', {
            method: 'POST',
            headers: {'Content-Type': 'application/json'},
            body: JSON.stringify(body)
          });
          const data = await resp.json();
          if (resp.ok && data.ok) {
            result.textContent = 'Thanks! We will be in touch shortly.';
            f.reset();
          } else {
            result.textContent = data.error || 'Something went wrong; please try again.';
          }
        } catch (err) {
          result.textContent = 'Something went wrong; please try again.';
        }
      });
    </script>
  </body>
</html>`

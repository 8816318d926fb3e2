package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"
)

func (sh *shell) requireDB(db *sql.DB, label string) bool {
	if db == nil {
		fmt.Fprintf(sh.out, "%s%s database not configured%s\n", Red, label, Reset)
		return false
	}
	return true
}

func (sh *shell) queryFailed(err error) bool {
	if err != nil {
		fmt.Fprintf(sh.out, "%squery failed:%s %v\n", Red, Reset, err)
		return true
	}
	return false
}

func (sh *shell) printHealth() {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(sh.apiURL + "/health")
	if err != nil {
		fmt.Fprintf(sh.out, "  api-service  %sDOWN%s  %v\n", Red, Reset, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		fmt.Fprintf(sh.out, "  api-service  %sUP%s\n", Green, Reset)
		return
	}
	fmt.Fprintf(sh.out, "  api-service  %s%d%s\n", Yellow, resp.StatusCode, Reset)
}

func (sh *shell) showPreferences(userID string) {
	if !sh.requireDB(sh.apiDB, "api") {
		return
	}
	var (
		push, email, sms, reminders, checkin bool
		notif, theme, unit, lang             string
		radius                               int
		updated                              time.Time
	)
	err := sh.apiDB.QueryRow(`SELECT push_notifications, email_notifications, sms_notifications, plan_reminders,
		auto_checkin, notification_type, theme_mode, distance_unit, language, search_radius_mi, updated_at
		FROM user_preferences WHERE user_id = $1`, userID).
		Scan(&push, &email, &sms, &reminders, &checkin, &notif, &theme, &unit, &lang, &radius, &updated)
	if err == sql.ErrNoRows {
		fmt.Fprintf(sh.out, "%sno preferences for %s%s\n", Dim, userID, Reset)
		return
	}
	if sh.queryFailed(err) {
		return
	}

	fmt.Fprintf(sh.out, "  push=%t email=%t sms=%t reminders=%t autoCheckin=%t\n", push, email, sms, reminders, checkin)
	fmt.Fprintf(sh.out, "  notificationType=%s theme=%s unit=%s language=%s radius=%dmi\n", notif, theme, unit, lang, radius)
	fmt.Fprintf(sh.out, "  %supdated %s%s\n", Dim, updated.Format(time.RFC3339), Reset)
}

func (sh *shell) countPreferences() {
	if !sh.requireDB(sh.apiDB, "api") {
		return
	}
	var n int
	if sh.queryFailed(sh.apiDB.QueryRow("SELECT COUNT(*) FROM user_preferences").Scan(&n)) {
		return
	}
	fmt.Fprintf(sh.out, "  %d preference records\n", n)
}

func (sh *shell) printNotificationRows(rows *sql.Rows) {
	defer rows.Close()
	count := 0
	for rows.Next() {
		var (
			eventType, planID, cityID string
			actorID                   sql.NullString
			createdAt                 time.Time
		)
		if err := rows.Scan(&eventType, &planID, &actorID, &cityID, &createdAt); err != nil {
			continue
		}
		count++
		fmt.Fprintf(sh.out, "  %s%-13s%s plan=%s actor=%s city=%s %s%s%s\n",
			Cyan, eventType, Reset, planID, actorID.String, cityID, Dim, createdAt.Format("01-02 15:04:05"), Reset)
	}
	if count == 0 {
		fmt.Fprintf(sh.out, "  %s(none)%s\n", Dim, Reset)
	}
}

func (sh *shell) showNotifications(limit int) {
	if !sh.requireDB(sh.notificationsDB, "notifications") {
		return
	}
	rows, err := sh.notificationsDB.Query(`SELECT event_type, plan_id, actor_id, city_id, created_at
		FROM plan_notifications ORDER BY created_at DESC LIMIT $1`, limit)
	if sh.queryFailed(err) {
		return
	}
	sh.printNotificationRows(rows)
}

func (sh *shell) showPlanNotifications(planID string) {
	if !sh.requireDB(sh.notificationsDB, "notifications") {
		return
	}
	rows, err := sh.notificationsDB.Query(`SELECT event_type, plan_id, actor_id, city_id, created_at
		FROM plan_notifications WHERE plan_id = $1 ORDER BY created_at`, planID)
	if sh.queryFailed(err) {
		return
	}
	sh.printNotificationRows(rows)
}

func (sh *shell) printMetricRows(rows *sql.Rows) {
	defer rows.Close()
	count := 0
	for rows.Next() {
		var (
			day               time.Time
			cityID, eventType string
			n                 int
		)
		if err := rows.Scan(&day, &cityID, &eventType, &n); err != nil {
			continue
		}
		count++
		fmt.Fprintf(sh.out, "  %s  %-36s %-13s %s%d%s\n", day.Format("2006-01-02"), cityID, eventType, Bold, n, Reset)
	}
	if count == 0 {
		fmt.Fprintf(sh.out, "  %s(none)%s\n", Dim, Reset)
	}
}

func (sh *shell) showMetrics(limit int) {
	if !sh.requireDB(sh.analyticsDB, "analytics") {
		return
	}
	rows, err := sh.analyticsDB.Query(`SELECT metric_date, city_id, event_type, count
		FROM plan_metrics ORDER BY metric_date DESC, count DESC LIMIT $1`, limit)
	if sh.queryFailed(err) {
		return
	}
	sh.printMetricRows(rows)
}

func (sh *shell) showCityMetrics(cityID string) {
	if !sh.requireDB(sh.analyticsDB, "analytics") {
		return
	}
	rows, err := sh.analyticsDB.Query(`SELECT metric_date, city_id, event_type, count
		FROM plan_metrics WHERE city_id = $1 ORDER BY metric_date DESC, event_type`, cityID)
	if sh.queryFailed(err) {
		return
	}
	sh.printMetricRows(rows)
}

func (sh *shell) showTrending(limit int) {
	if !sh.requireDB(sh.analyticsDB, "analytics") {
		return
	}
	rows, err := sh.analyticsDB.Query(`SELECT city_id, SUM(count) AS total
		FROM plan_metrics WHERE metric_date = CURRENT_DATE
		GROUP BY city_id ORDER BY total DESC LIMIT $1`, limit)
	if sh.queryFailed(err) {
		return
	}
	defer rows.Close()

	rank := 0
	for rows.Next() {
		var (
			cityID string
			total  int
		)
		if err := rows.Scan(&cityID, &total); err != nil {
			continue
		}
		rank++
		fmt.Fprintf(sh.out, "  %d. %-36s %s%d%s\n", rank, cityID, Bold, total, Reset)
	}
	if rank == 0 {
		fmt.Fprintf(sh.out, "  %s(no activity today)%s\n", Dim, Reset)
	}
}

func (sh *shell) showIdempotencyKeys(db *sql.DB, label string) {
	if !sh.requireDB(db, label) {
		return
	}
	rows, err := db.Query("SELECT event_id, processed_at FROM idempotency_keys ORDER BY processed_at DESC LIMIT 10")
	if sh.queryFailed(err) {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID     string
			processedAt time.Time
		)
		if err := rows.Scan(&eventID, &processedAt); err != nil {
			continue
		}
		fmt.Fprintf(sh.out, "  %s  %s%s%s\n", eventID, Dim, processedAt.Format("01-02 15:04:05"), Reset)
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for notices
}

type monitorModel struct {
	session       *tsip.Session
	connInfo      string
	stats         *tsip.Statistics
	skyTable      table.Model
	eventLog      []eventLogEntry
	maxLogEntries int
	width         int
	height        int
	quitting      bool
	lastFixAt     time.Time
}

type monitorTickMsg time.Time

func initialMonitorModel(session *tsip.Session, connInfo string) monitorModel {
	columns := []table.Column{
		{Title: "GNSS", Width: 8},
		{Title: "PRN", Width: 5},
		{Title: "El", Width: 6},
		{Title: "Az", Width: 6},
		{Title: "SNR", Width: 6},
		{Title: "Used", Width: 5},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("12"))
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)

	return monitorModel{
		session:       session,
		connInfo:      connInfo,
		stats:         tsip.NewStatistics(),
		skyTable:      t,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return monitorTick()
}

func monitorTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		m.stats.CalculateRates()
		return m, monitorTick()

	case framingErrMsg:
		m.stats.Update(nil, msg.err, nil)
		m.addLogEntry(fmt.Sprintf("FRAMING: %v", msg.err), true)

	case packetMsg:
		m.stats.Update(msg.packet, nil, msg.result.Errors)
		for _, err := range msg.result.Errors {
			m.addLogEntry(err.Message, true)
		}
		for _, c := range msg.result.Commands {
			m.addLogEntry(fmt.Sprintf("sent %s", c.Label), false)
		}
		if msg.result.Mask.Has(tsip.MaskReportFix) {
			m.lastFixAt = time.Now()
		}
		if msg.result.Mask.Has(tsip.MaskSkyview) {
			m.refreshSkyview()
		}
	}

	return m, nil
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m *monitorModel) refreshSkyview() {
	rows := []table.Row{}
	for _, sat := range m.session.Skyview.Seen() {
		used := ""
		if sat.Used {
			used = "*"
		}
		rows = append(rows, table.Row{
			tsip.GnssName(sat.GnssID),
			fmt.Sprintf("%d", sat.PRN),
			fmt.Sprintf("%.0f", sat.Elevation),
			fmt.Sprintf("%.0f", sat.Azimuth),
			fmt.Sprintf("%.1f", sat.SNR),
			used,
		})
	}
	m.skyTable.SetRows(rows)
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("SEXTANT - RECEIVER MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	// Receiver identity
	ident := m.session.Subtype
	if ident == "" {
		ident = "identifying..."
	}
	if m.session.Subtype1 != "" {
		ident += " / " + m.session.Subtype1
	}
	s.WriteString(labelStyle.Render("Receiver: "))
	s.WriteString(valueStyle.Render(ident))
	s.WriteString("\n\n")

	// Fix panel
	fixPanel := m.renderFixPanel(labelStyle, valueStyle)
	skyPanel := boxStyle.Render(m.skyTable.View())
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(fixPanel), skyPanel))
	s.WriteString("\n")

	// Statistics line
	m.stats.CalculateRates()
	s.WriteString(labelStyle.Render("Packets: "))
	s.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalPackets)))
	s.WriteString(labelStyle.Render("  Rate: "))
	s.WriteString(valueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.PacketRate)))
	s.WriteString(labelStyle.Render("  Errors: "))
	errCount := m.stats.FramingErrors + m.stats.ChecksumErrors +
		m.stats.ShortPackets + m.stats.LengthMismatches
	if errCount > 0 {
		s.WriteString(errorStyle.Render(fmt.Sprintf("%d", errCount)))
	} else {
		s.WriteString(valueStyle.Render("0"))
	}
	if !m.lastFixAt.IsZero() {
		s.WriteString(headerStyle.Render(fmt.Sprintf("  last fix %s ago",
			time.Since(m.lastFixAt).Round(time.Second))))
	}
	s.WriteString("\n\n")

	// Event log
	s.WriteString(m.renderEventLog(headerStyle, errorStyle, boxStyle))

	return s.String()
}

func (m monitorModel) renderFixPanel(labelStyle, valueStyle lipgloss.Style) string {
	fix := &m.session.Fix
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-9s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	if fix.Time.IsZero() {
		row("Time", "-")
	} else {
		row("Time", fix.Time.UTC().Format("2006-01-02 15:04:05"))
	}
	row("Mode", fmt.Sprintf("%v / %v", fixModeName(fix.Mode), fixStatusName(fix.Status)))
	row("Lat", fmt.Sprintf("%.6f", fix.Lat))
	row("Lon", fmt.Sprintf("%.6f", fix.Lon))
	row("Alt", fmt.Sprintf("%.2f m", fix.AltHAE))
	row("PDOP", fmt.Sprintf("%.1f", fix.PDOP))
	row("HDOP", fmt.Sprintf("%.1f", fix.HDOP))
	row("Sats", fmt.Sprintf("%d used / %d visible",
		len(m.session.SatsUsed), m.session.Skyview.Visible))
	if fix.Temperature != 0 {
		row("Temp", fmt.Sprintf("%.1f C", fix.Temperature))
	}
	return b.String()
}

func (m monitorModel) renderEventLog(headerStyle, errorStyle, boxStyle lipgloss.Style) string {
	maxLines := m.height - 22
	if maxLines < 3 {
		maxLines = 3
	}
	start := len(m.eventLog) - maxLines
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for _, entry := range m.eventLog[start:] {
		line := fmt.Sprintf("%s %s", entry.timestamp.Format("15:04:05"), entry.message)
		if entry.isError {
			b.WriteString(errorStyle.Render(line))
		} else {
			b.WriteString(headerStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		b.WriteString(headerStyle.Render("no events yet"))
	}
	return boxStyle.Render(b.String())
}

func fixModeName(m tsip.FixMode) string {
	switch m {
	case tsip.ModeNoFix:
		return "NO FIX"
	case tsip.Mode2D:
		return "2D"
	case tsip.Mode3D:
		return "3D"
	}
	return "?"
}

func fixStatusName(s tsip.FixStatus) string {
	switch s {
	case tsip.StatusGPS:
		return "GPS"
	case tsip.StatusDGPS:
		return "DGPS"
	case tsip.StatusDR:
		return "DR"
	case tsip.StatusTime:
		return "TIME"
	}
	return "?"
}

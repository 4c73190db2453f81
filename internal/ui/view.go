package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/saltyorg/contactbook/internal/database"
)

// OperationTimeout bounds a single button action
const OperationTimeout = 30 * time.Second

// form button indices
const (
	buttonConnect = iota
	buttonDisconnect
	buttonAdd
	buttonUpdate
	buttonRefresh
)

var tableHeaders = []string{"ID", "First name", "Last name", "Phone", "Email"}

// App is the terminal front end
type App struct {
	ctrl *Controller
	app  *tview.Application

	form       *tview.Form
	firstName  *tview.InputField
	lastName   *tview.InputField
	phone      *tview.InputField
	email      *tview.InputField
	table      *tview.Table
	deleteForm *tview.Form
	deleteID   *tview.InputField
	status     *tview.TextView

	// ID of the selected row, 0 when nothing is selected
	selectedID int64
}

// NewApp builds the screen for ctrl. Nothing is drawn until Run.
func NewApp(ctrl *Controller) *App {
	a := &App{
		ctrl: ctrl,
		app:  tview.NewApplication(),
	}

	a.firstName = tview.NewInputField().SetLabel("First name").SetFieldWidth(24)
	a.lastName = tview.NewInputField().SetLabel("Last name").SetFieldWidth(24)
	a.phone = tview.NewInputField().SetLabel("Phone").SetFieldWidth(18)
	a.email = tview.NewInputField().SetLabel("Email").SetFieldWidth(30)

	a.form = tview.NewForm().
		AddFormItem(a.firstName).
		AddFormItem(a.lastName).
		AddFormItem(a.phone).
		AddFormItem(a.email).
		AddButton("Connect", a.connect).
		AddButton("Disconnect", a.disconnect).
		AddButton("Add", a.add).
		AddButton("Update selected", a.update).
		AddButton("Refresh", a.refresh)
	a.form.SetHorizontal(true)
	a.form.SetBorder(true).SetTitle(" Contact ")

	a.table = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	a.table.SetBorder(true).SetTitle(" Contacts ")
	a.table.SetSelectionChangedFunc(func(row, _ int) { a.selectRow(row) })

	a.deleteID = tview.NewInputField().
		SetLabel("To delete a contact, enter its ID").
		SetFieldWidth(10).
		SetAcceptanceFunc(tview.InputFieldInteger)
	a.deleteForm = tview.NewForm().
		AddFormItem(a.deleteID).
		AddButton("Delete", a.deleteByID)
	a.deleteForm.SetHorizontal(true)

	a.status = tview.NewTextView().SetDynamicColors(true)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.form, 7, 0, true).
		AddItem(a.table, 0, 1, false).
		AddItem(a.deleteForm, 3, 0, false).
		AddItem(a.status, 1, 0, false)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			a.refresh()
			return nil
		case tcell.KeyF2:
			a.app.SetFocus(a.table)
			return nil
		}
		return event
	})
	a.app.SetRoot(layout, true).EnableMouse(true)

	a.clearTable()
	a.setConnected(false)
	a.info("Not connected. Press Connect to open the database.")

	return a
}

// Run blocks until the user quits (Ctrl-C), then closes any open connection
func (a *App) Run() error {
	defer func() { _ = a.ctrl.Disconnect() }()
	return a.app.Run()
}

// SettingsReloaded tells the user that new settings apply on the next
// Connect. Safe to call from any goroutine.
func (a *App) SettingsReloaded() {
	a.app.QueueUpdateDraw(func() {
		a.info("Settings reloaded; they apply on the next Connect.")
	})
}

// setConnected enables the CRUD buttons only while connected
func (a *App) setConnected(connected bool) {
	a.form.GetButton(buttonConnect).SetDisabled(connected)
	a.form.GetButton(buttonDisconnect).SetDisabled(!connected)
	a.form.GetButton(buttonAdd).SetDisabled(!connected)
	a.form.GetButton(buttonUpdate).SetDisabled(!connected)
	a.form.GetButton(buttonRefresh).SetDisabled(!connected)
	a.deleteForm.GetButton(0).SetDisabled(!connected)
}

func (a *App) connect() {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	if err := a.ctrl.Connect(ctx); err != nil {
		a.setConnected(false)
		a.fail("Could not connect", err)
		return
	}

	a.setConnected(true)
	if a.show(ctx) {
		a.success("Connected to " + a.ctrl.Target())
	}
}

func (a *App) disconnect() {
	err := a.ctrl.Disconnect()
	a.setConnected(false)
	a.clearTable()
	a.clearInputs()
	if err != nil {
		a.fail("Could not close the connection", err)
		return
	}
	a.info("Disconnected from the database.")
}

// refresh clears the inputs and selection and reloads the table
func (a *App) refresh() {
	if !a.requireConnection() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	a.clearInputs()
	a.show(ctx)
}

func (a *App) add() {
	if !a.requireConnection() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	contact, err := a.ctrl.Add(ctx, a.formValues())
	if errors.Is(err, ErrMissingNames) {
		a.warn("First and last name are required.")
		return
	}
	if err != nil {
		a.fail("Could not add the contact", err)
		return
	}

	a.clearInputs()
	if a.show(ctx) {
		a.success(fmt.Sprintf("Contact %d added.", contact.ID))
	}
}

func (a *App) update() {
	if !a.requireConnection() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	rows, err := a.ctrl.UpdateSelected(ctx, a.selectedID, a.formValues())
	switch {
	case errors.Is(err, ErrNoSelection):
		a.warn("Select a contact in the table to update.")
		return
	case err != nil:
		a.fail("Could not update the contact", err)
		return
	}

	a.clearInputs()
	if !a.show(ctx) {
		return
	}
	if rows == 0 {
		a.info("No changes.")
	} else {
		a.success("Contact updated.")
	}
}

func (a *App) deleteByID() {
	if !a.requireConnection() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	rows, err := a.ctrl.DeleteByID(ctx, a.deleteID.GetText())
	switch {
	case errors.Is(err, ErrInvalidID):
		a.warn("Enter a numeric ID to delete.")
		return
	case err != nil:
		a.fail("Could not delete the contact", err)
		return
	}

	a.clearInputs()
	if !a.show(ctx) {
		return
	}
	if rows == 0 {
		a.info("No contact has that ID.")
	} else {
		a.success("Contact deleted.")
	}
}

// show reloads the table from the store and reports whether it succeeded
func (a *App) show(ctx context.Context) bool {
	contacts, err := a.ctrl.Contacts(ctx)
	if err != nil {
		a.clearTable()
		a.fail("Could not load the contacts", err)
		return false
	}
	a.fillTable(contacts)
	return true
}

func (a *App) requireConnection() bool {
	if a.ctrl.Connected() {
		return true
	}
	a.warn("Not connected to the database.")
	return false
}

func (a *App) formValues() Form {
	return Form{
		FirstName: a.firstName.GetText(),
		LastName:  a.lastName.GetText(),
		Phone:     a.phone.GetText(),
		Email:     a.email.GetText(),
	}
}

func (a *App) clearInputs() {
	for _, field := range []*tview.InputField{a.firstName, a.lastName, a.phone, a.email, a.deleteID} {
		field.SetText("")
	}
	a.selectedID = 0
}

func (a *App) clearTable() {
	a.table.Clear()
	for col, header := range tableHeaders {
		a.table.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}
	a.selectedID = 0
}

func (a *App) fillTable(contacts []database.Contact) {
	a.clearTable()
	for i, c := range contacts {
		row := i + 1
		values := []string{strconv.FormatInt(c.ID, 10), c.FirstName, c.LastName, c.Phone, c.Email}
		for col, value := range values {
			cell := tview.NewTableCell(tview.Escape(value)).SetExpansion(1)
			if col == 0 {
				cell.SetReference(c)
			}
			a.table.SetCell(row, col, cell)
		}
	}
	// keep the highlight off until the user picks a row
	a.table.Select(0, 0)
	a.selectedID = 0
}

// selectRow loads the selected contact into the form
func (a *App) selectRow(row int) {
	if row < 1 {
		return
	}
	contact, ok := a.table.GetCell(row, 0).GetReference().(database.Contact)
	if !ok {
		return
	}

	a.selectedID = contact.ID
	a.firstName.SetText(contact.FirstName)
	a.lastName.SetText(contact.LastName)
	a.phone.SetText(contact.Phone)
	a.email.SetText(contact.Email)
}

func (a *App) success(message string) { a.setStatus("green", message) }

func (a *App) info(message string) { a.setStatus("white", message) }

func (a *App) warn(message string) { a.setStatus("yellow", message) }

func (a *App) fail(message string, err error) {
	a.setStatus("red", message+": "+err.Error())
}

func (a *App) setStatus(color, message string) {
	a.status.SetText(fmt.Sprintf("[%s]%s[-]", color, tview.Escape(message)))
}

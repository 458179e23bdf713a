// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/sycamore23/yolo-obb-annotator/internal/app"
	"github.com/sycamore23/yolo-obb-annotator/internal/class"
	"github.com/sycamore23/yolo-obb-annotator/internal/controller"
	"github.com/sycamore23/yolo-obb-annotator/internal/version"
	"github.com/sycamore23/yolo-obb-annotator/ui/canvas"
	"github.com/sycamore23/yolo-obb-annotator/ui/prefs"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	canvas    *canvas.AnnotationCanvas
	prefs     *prefs.Prefs
	statusBar *widget.Label
	classList *widget.List

	// activeClass labels newly drawn shapes.
	activeClass *class.Class
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("YOLO OBB Annotator")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	state.Controller.Resolver = mw.resolveClass
	state.Controller.Tool = toolByName(p.DefaultTool())

	mw.setupUI()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	w, h := p.WindowSize()
	win.Resize(fyne.NewSize(float32(w), float32(h)))
	return mw
}

func toolByName(name string) controller.ToolMode {
	switch name {
	case "box":
		return controller.ToolDrawAxisBox
	case "obox":
		return controller.ToolDrawOrientedBox
	case "polygon":
		return controller.ToolDrawPolygon
	default:
		return controller.ToolSelect
	}
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.state)
	mw.statusBar = widget.NewLabel("Ready")
	mw.canvas.OnCursor = func(hint controller.CursorHint) {
		// The raster widget cannot change the OS cursor; surface the
		// feedback in the status bar instead.
		switch hint {
		case controller.CursorMove:
			mw.updateStatus("move")
		case controller.CursorResize:
			mw.updateStatus("resize")
		case controller.CursorRotate:
			mw.updateStatus("rotate")
		}
	}

	mw.classList = widget.NewList(
		func() int { return mw.state.Classes.Len() },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			all := mw.state.Classes.All()
			if i < len(all) {
				c := all[i]
				o.(*widget.Label).SetText(fmt.Sprintf("%d: %s (%d)", c.ID, c.Name, c.Count))
			}
		},
	)
	mw.classList.OnSelected = func(i widget.ListItemID) {
		all := mw.state.Classes.All()
		if i < len(all) {
			mw.activeClass = all[i]
			mw.updateStatus("class: " + mw.activeClass.Name)
		}
	}
	addClass := widget.NewButton("Add class", mw.promptNewClass)

	split := container.NewHSplit(
		container.NewBorder(widget.NewLabel("Classes"), addClass, nil, nil, mw.classList),
		container.NewBorder(mw.createToolbar(), nil, nil, nil, mw.canvas),
	)
	split.SetOffset(0.2)

	mw.SetContent(container.NewBorder(nil, mw.statusBar, nil, nil, split))
}

func toolName(t controller.ToolMode) string {
	switch t {
	case controller.ToolDrawAxisBox:
		return "box"
	case controller.ToolDrawOrientedBox:
		return "obox"
	case controller.ToolDrawPolygon:
		return "polygon"
	default:
		return "select"
	}
}

// selectTool switches the active tool and remembers it for the next session.
func (mw *MainWindow) selectTool(t controller.ToolMode) {
	mw.state.Controller.SetTool(t)
	mw.prefs.SetDefaultTool(toolName(t))
	mw.updateStatus("tool: " + t.String())
}

func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	setTool := mw.selectTool
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), mw.onOpenImage),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), mw.onSaveLabels),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.NavigateBackIcon(), mw.onUndo),
		widget.NewToolbarAction(theme.NavigateNextIcon(), mw.onRedo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCutIcon(), func() { setTool(controller.ToolSelect) }),
		widget.NewToolbarAction(theme.CheckButtonIcon(), func() { setTool(controller.ToolDrawAxisBox) }),
		widget.NewToolbarAction(theme.CheckButtonCheckedIcon(), func() { setTool(controller.ToolDrawOrientedBox) }),
		widget.NewToolbarAction(theme.MoreVerticalIcon(), func() { setTool(controller.ToolDrawPolygon) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), mw.onCopy),
		widget.NewToolbarAction(theme.ContentPasteIcon(), mw.onPaste),
		widget.NewToolbarAction(theme.DeleteIcon(), mw.onDelete),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomFitIcon(), mw.canvas.FitToView),
	)
}

func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.state.Controller.Escape()
			mw.canvas.Refresh()
		case fyne.KeyReturn:
			mw.state.Controller.FinishPolygon()
			mw.canvas.Refresh()
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDelete()
		case fyne.KeyS:
			mw.selectTool(controller.ToolSelect)
		case fyne.KeyB:
			mw.selectTool(controller.ToolDrawAxisBox)
		case fyne.KeyO:
			mw.selectTool(controller.ToolDrawOrientedBox)
		case fyne.KeyP:
			mw.selectTool(controller.ToolDrawPolygon)
		case fyne.KeyL:
			if mw.activeClass != nil {
				n := mw.state.AssignClass(mw.activeClass.ID, mw.activeClass.Name)
				if n > 0 {
					mw.updateStatus(fmt.Sprintf("relabeled %d", n))
					mw.canvas.Refresh()
				}
			}
		}
	})
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventModified, func(data interface{}) {
		title := "YOLO OBB Annotator"
		if mw.state.Image != nil {
			title += " - " + filepath.Base(mw.state.Image.Path)
		}
		if modified, ok := data.(bool); ok && modified {
			title += " *"
		}
		mw.SetTitle(title)
	})
	mw.state.On(app.EventShapesChanged, func(data interface{}) {
		if desc, ok := data.(string); ok && desc != "" {
			mw.updateStatus(desc)
		}
	})
	mw.state.On(app.EventClassesChanged, func(interface{}) {
		mw.classList.Refresh()
	})
	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// resolveClass labels a freshly drawn shape with the class picked in the
// class list. With no active class the draw is rejected and the shape
// rolled back; a dialog here would stall the event loop mid-gesture.
func (mw *MainWindow) resolveClass() (int, string, bool) {
	if mw.activeClass == nil {
		mw.updateStatus("select a class before drawing")
		return 0, "", false
	}
	return mw.activeClass.ID, mw.activeClass.Name, true
}

// promptNewClass adds a class by name and makes it active.
func (mw *MainWindow) promptNewClass() {
	entry := widget.NewEntry()
	items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
	dialog.ShowForm("New class", "Add", "Cancel", items, func(confirmed bool) {
		if !confirmed || entry.Text == "" {
			return
		}
		mw.activeClass = mw.state.Classes.Ensure(entry.Text)
		mw.classList.Refresh()
		mw.updateStatus("class: " + mw.activeClass.Name)
	}, mw.Window)
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if err := mw.state.OpenImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetLastImage(path)
		mw.prefs.SetLastDirectory(filepath.Dir(path))
		_ = mw.prefs.Save()

		if mw.prefs.AutoLoadLabels() {
			labelPath := mw.labelPathFor(path)
			if err := mw.state.LoadLabelsForImage(labelPath); err == nil {
				mw.updateStatus("loaded " + filepath.Base(labelPath))
			}
		}
		mw.canvas.Refresh()
	}, mw.Window)
	if dir := mw.prefs.LastDirectory(); dir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

// labelPathFor resolves the label file path for an image, preferring the
// project layout when a project is open.
func (mw *MainWindow) labelPathFor(imagePath string) string {
	if mw.state.Project != nil && mw.state.ProjectPath != "" {
		return mw.state.Project.LabelPathFor(mw.state.ProjectPath, imagePath)
	}
	ext := filepath.Ext(imagePath)
	return imagePath[:len(imagePath)-len(ext)] + ".txt"
}

func (mw *MainWindow) onSaveLabels() {
	if mw.state.Image == nil {
		return
	}
	labelPath := mw.labelPathFor(mw.state.Image.Path)
	if err := mw.state.SaveLabelsForImage(labelPath); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("saved " + filepath.Base(labelPath))
}

func (mw *MainWindow) onUndo() {
	if desc := mw.state.Undo(); desc != "" {
		mw.updateStatus(desc)
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onRedo() {
	if desc := mw.state.Redo(); desc != "" {
		mw.updateStatus(desc)
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onCopy() {
	n := mw.state.CopySelected()
	mw.updateStatus(fmt.Sprintf("copied %d", n))
}

func (mw *MainWindow) onPaste() {
	n := mw.state.Paste()
	if n > 0 {
		mw.updateStatus(fmt.Sprintf("pasted %d", n))
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onDelete() {
	n := mw.state.DeleteSelected()
	if n > 0 {
		mw.updateStatus(fmt.Sprintf("deleted %d", n))
		mw.canvas.Refresh()
	}
}

// ShowAbout displays version information.
func (mw *MainWindow) ShowAbout() {
	dialog.ShowInformation("About",
		"YOLO OBB Annotator "+version.Full(),
		mw.Window)
}

// RestoreLastImage reopens the image from the previous session, if any.
func (mw *MainWindow) RestoreLastImage() {
	path := mw.prefs.LastImage()
	if path == "" {
		return
	}
	if err := mw.state.OpenImage(path); err != nil {
		return
	}
	if mw.prefs.AutoLoadLabels() {
		_ = mw.state.LoadLabelsForImage(mw.labelPathFor(path))
	}
	mw.canvas.Refresh()
}

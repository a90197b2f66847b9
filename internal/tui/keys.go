package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type listKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	New         key.Binding
	Edit        key.Binding
	TitleFilter key.Binding
	AssigneeIn  key.Binding
	Status      key.Binding
	Priority    key.Binding
	Assignee    key.Binding
	Clear       key.Binding
	Sort        key.Binding
	SortDir     key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	Smaller     key.Binding
	Larger      key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newListKeyMap() listKeyMap {
	return listKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new issue")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		TitleFilter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search title")),
		AssigneeIn:  key.NewBinding(key.WithKeys("@"), key.WithHelp("@", "search assignee")),
		Status:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Priority:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		Assignee:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assignee filter")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Sort:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort by")),
		SortDir:     key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "sort direction")),
		PrevPage:    key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
		NextPage:    key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
		Smaller:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "smaller pages")),
		Larger:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "larger pages")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.New, k.TitleFilter, k.Status, k.Sort, k.NextPage, k.Help, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.New, k.Edit},
		{k.TitleFilter, k.AssigneeIn, k.Status, k.Priority, k.Assignee, k.Clear},
		{k.Sort, k.SortDir, k.PrevPage, k.NextPage, k.Smaller, k.Larger},
		{k.Reload, k.Help, k.Quit},
	}
}

type detailKeyMap struct {
	Back   key.Binding
	Edit   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func newDetailKeyMap() detailKeyMap {
	return detailKeyMap{
		Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back to list")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k detailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Edit, k.Reload, k.Quit}
}

func (k detailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Cycle  key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Cycle:  key.NewBinding(key.WithKeys("left", "right", " "), key.WithHelp("←/→", "change")),
		Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Cycle, k.Submit, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
